package usecase

import (
	"context"
	"fmt"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
	"ReviewInsights/internal/textrecord"
)

// Prioritizer ranks canonical topics into HIGH/MEDIUM/LOW tiers.
type Prioritizer struct {
	gen ports.Generator
}

// NewPrioritizer wires the generator used for ranking.
func NewPrioritizer(gen ports.Generator) *Prioritizer {
	return &Prioritizer{gen: gen}
}

// Prioritize returns the ranked records in the order they were generated.
func (p *Prioritizer) Prioritize(ctx context.Context, topics []domain.CanonicalTopic) ([]domain.PriorityRecord, error) {
	if len(topics) == 0 {
		return []domain.PriorityRecord{}, nil
	}

	text, err := p.gen.Generate(ctx, domain.GenerationRequest{
		System:      prioritySystem,
		Prompt:      priorityPrompt(topics),
		Temperature: analysisTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("prioritize %d topics: %w", len(topics), err)
	}

	blocks := textrecord.SplitRecords(text, "PRIORITY")
	records := make([]domain.PriorityRecord, 0, len(blocks))
	for _, block := range blocks {
		fields := textrecord.Parse(block, "PRIORITY", "TOPIC", "DESCRIPTION", "IMPACT", "EVIDENCE")
		title := fields["TOPIC"]
		if title == "" {
			title = textrecord.Field(block, "TITLE")
		}
		records = append(records, domain.PriorityRecord{
			Priority:    domain.ParsePriority(fields["PRIORITY"]),
			TopicTitle:  title,
			Description: fields["DESCRIPTION"],
			Impact:      fields["IMPACT"],
			Evidence:    fields["EVIDENCE"],
			Raw:         block,
		})
	}
	return records, nil
}
