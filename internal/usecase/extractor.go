package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
	"ReviewInsights/internal/textrecord"
)

const defaultBatchSize = 10

// Extractor turns batches of reviews into raw topic mentions.
type Extractor struct {
	gen     ports.Generator
	workers int
	logger  *slog.Logger
}

// NewExtractor builds an extractor running at most workers batches at once.
func NewExtractor(gen ports.Generator, workers int, logger *slog.Logger) *Extractor {
	if workers < 1 {
		workers = 1
	}
	return &Extractor{gen: gen, workers: workers, logger: logger}
}

// Extract issues one generation call per batch and returns the mentions in batch
// order. Any failed call aborts the extraction.
func (e *Extractor) Extract(ctx context.Context, reviews []domain.Review, batchSize int) ([]domain.RawTopicMention, error) {
	batches := partition(reviews, batchSize)
	if len(batches) == 0 {
		return []domain.RawTopicMention{}, nil
	}

	results := make([][]domain.RawTopicMention, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, batch := range batches {
		g.Go(func() error {
			text, err := e.gen.Generate(gctx, domain.GenerationRequest{
				System:      extractionSystem,
				Prompt:      extractionPrompt(batch),
				Temperature: analysisTemperature,
			})
			if err != nil {
				return fmt.Errorf("extract batch %d/%d: %w", i+1, len(batches), err)
			}
			results[i] = textrecord.SplitBlocks(text)
			e.debug("batch extracted", "batch", i+1, "reviews", len(batch), "mentions", len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	mentions := make([]domain.RawTopicMention, 0, len(batches)*4)
	for _, batch := range results {
		mentions = append(mentions, batch...)
	}
	return mentions, nil
}

func (e *Extractor) debug(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

// partition splits reviews into consecutive chunks; the last may be smaller.
func partition(reviews []domain.Review, size int) [][]domain.Review {
	if size <= 0 {
		size = defaultBatchSize
	}
	var batches [][]domain.Review
	for start := 0; start < len(reviews); start += size {
		end := min(start+size, len(reviews))
		batches = append(batches, reviews[start:end])
	}
	return batches
}
