package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
	"ReviewInsights/internal/textrecord"
)

var topicLabels = []string{"TITLE", "DESCRIPTION", "IMPACT", "EVIDENCE", "EMOJI"}

// Consolidator merges raw mentions into a bounded set of canonical topics.
type Consolidator struct {
	gen    ports.Generator
	logger *slog.Logger
}

// NewConsolidator wires the generator used for merging.
func NewConsolidator(gen ports.Generator, logger *slog.Logger) *Consolidator {
	return &Consolidator{gen: gen, logger: logger}
}

// Consolidate asks for minTopics..maxTopics merged groups. With at most minTopics
// mentions nothing is generated and every mention becomes its own topic. The
// bounds only steer the prompt; whatever count comes back is accepted.
func (c *Consolidator) Consolidate(ctx context.Context, mentions []domain.RawTopicMention, minTopics, maxTopics int) ([]domain.CanonicalTopic, error) {
	if len(mentions) <= minTopics {
		return passthrough(mentions), nil
	}

	text, err := c.gen.Generate(ctx, domain.GenerationRequest{
		System:      consolidationSystem,
		Prompt:      consolidationPrompt(mentions, minTopics, maxTopics),
		Temperature: analysisTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("consolidate %d mentions: %w", len(mentions), err)
	}

	records := textrecord.SplitRecords(text, "TITLE")
	topics := make([]domain.CanonicalTopic, 0, len(records))
	for _, rec := range records {
		if topic, ok := topicFromBlock(rec); ok {
			topics = append(topics, topic)
		}
	}

	if len(topics) == 0 {
		if c.logger != nil {
			c.logger.Warn("consolidation returned no titled records, keeping raw mentions", "mentions", len(mentions))
		}
		return passthrough(mentions), nil
	}

	return uniqueTitles(topics), nil
}

func passthrough(mentions []domain.RawTopicMention) []domain.CanonicalTopic {
	topics := make([]domain.CanonicalTopic, 0, len(mentions))
	for _, mention := range mentions {
		if topic, ok := topicFromBlock(mention); ok {
			topics = append(topics, topic)
		}
	}
	return uniqueTitles(topics)
}

// topicFromBlock parses one record. Extraction-format blocks carry TOPIC instead
// of TITLE; as a last resort the first line is the title.
func topicFromBlock(block string) (domain.CanonicalTopic, bool) {
	fields := textrecord.Parse(block, topicLabels...)

	title := fields["TITLE"]
	if title == "" {
		title = textrecord.Field(block, "TOPIC")
	}
	if title == "" {
		title = textrecord.FirstLine(block)
	}
	if title == "" {
		return domain.CanonicalTopic{}, false
	}

	return domain.CanonicalTopic{
		ID:          ulid.Make().String(),
		Title:       title,
		Description: fields["DESCRIPTION"],
		Impact:      fields["IMPACT"],
		Evidence:    fields["EVIDENCE"],
		Emoji:       fields["EMOJI"],
		Raw:         block,
	}, true
}

// uniqueTitles suffixes repeated titles with " (n)".
func uniqueTitles(topics []domain.CanonicalTopic) []domain.CanonicalTopic {
	seen := make(map[string]int, len(topics))
	for i := range topics {
		base := topics[i].Title
		seen[base]++
		if seen[base] == 1 {
			continue
		}
		for n := seen[base]; ; n++ {
			candidate := fmt.Sprintf("%s (%d)", base, n)
			if _, taken := seen[candidate]; !taken {
				topics[i].Title = candidate
				seen[candidate] = 1
				break
			}
		}
	}
	return topics
}
