package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

// Options bounds one analysis run. Zero or negative fields take the defaults
// (8, 15, 10), so MinTopics cannot be 0; use 1 to consolidate any input with
// more than one mention. MaxTopics below MinTopics is raised to MinTopics.
type Options struct {
	MinTopics int
	MaxTopics int
	BatchSize int
}

// DefaultOptions mirrors the documented entry-point defaults.
func DefaultOptions() Options {
	return Options{MinTopics: 8, MaxTopics: 15, BatchSize: defaultBatchSize}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.MinTopics <= 0 {
		o.MinTopics = def.MinTopics
	}
	if o.MaxTopics <= 0 {
		o.MaxTopics = def.MaxTopics
	}
	if o.MaxTopics < o.MinTopics {
		o.MaxTopics = o.MinTopics
	}
	if o.BatchSize <= 0 {
		o.BatchSize = def.BatchSize
	}
	return o
}

// PipelineDeps wires the generator and tuning into the orchestration pipeline.
type PipelineDeps struct {
	Generator ports.Generator
	Workers   int
	Logger    *slog.Logger
}

// Pipeline implements the review topic analytics workflow.
type Pipeline struct {
	extractor    *Extractor
	consolidator *Consolidator
	prioritizer  *Prioritizer
	assembler    *Assembler
	logger       *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		extractor:    NewExtractor(deps.Generator, deps.Workers, deps.Logger),
		consolidator: NewConsolidator(deps.Generator, deps.Logger),
		prioritizer:  NewPrioritizer(deps.Generator),
		assembler:    NewAssembler(deps.Generator),
		logger:       deps.Logger,
	}
}

// RunAnalysis extracts, consolidates, prioritizes and associates topics, then
// assembles the report. A failed generation call aborts the whole run.
func (p *Pipeline) RunAnalysis(ctx context.Context, reviews []domain.Review, opts Options) (domain.Report, error) {
	opts = opts.normalized()
	p.info("analyzing reviews", "reviews", len(reviews))

	mentions, err := p.extractor.Extract(ctx, reviews, opts.BatchSize)
	if err != nil {
		return domain.Report{}, fmt.Errorf("extract topics: %w", err)
	}
	p.info("extracted topics", "mentions", len(mentions))

	topics, err := p.consolidator.Consolidate(ctx, mentions, opts.MinTopics, opts.MaxTopics)
	if err != nil {
		return domain.Report{}, fmt.Errorf("consolidate topics: %w", err)
	}
	p.info("consolidated topics", "topics", len(topics))

	priorities, err := p.prioritizer.Prioritize(ctx, topics)
	if err != nil {
		return domain.Report{}, fmt.Errorf("prioritize topics: %w", err)
	}
	p.info("prioritized topics", "records", len(priorities))

	assoc := Associate(reviews, topics)
	stats := Aggregate(assoc)
	p.info("calculated statistics", "reviews", stats.TotalReviews, "topics_hit", len(stats.TopicCounts))

	report, err := p.assembler.Assemble(ctx, mentions, topics, priorities, assoc, stats)
	if err != nil {
		return domain.Report{}, fmt.Errorf("assemble report: %w", err)
	}
	p.info("analysis complete")

	return report, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
