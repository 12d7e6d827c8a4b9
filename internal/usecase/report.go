package usecase

import (
	"context"
	"fmt"
	"strings"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

// Assembler merges every stage output into the final report.
type Assembler struct {
	gen ports.Generator
}

// NewAssembler wires the generator used for the executive summary.
func NewAssembler(gen ports.Generator) *Assembler {
	return &Assembler{gen: gen}
}

// Assemble enriches each topic with count, percentage, priority and emoji, then
// generates the executive summary from the priority records. Statistics without
// maps are derived from assoc.
func (a *Assembler) Assemble(
	ctx context.Context,
	mentions []domain.RawTopicMention,
	topics []domain.CanonicalTopic,
	priorities []domain.PriorityRecord,
	assoc domain.Association,
	stats domain.TopicStatistics,
) (domain.Report, error) {
	if stats.TopicCounts == nil || stats.TopicPercentages == nil {
		stats = Aggregate(assoc)
	}

	consolidated := make([]domain.ReportTopic, 0, len(topics))
	for _, topic := range topics {
		emoji := topic.Emoji
		if emoji == "" {
			emoji = domain.DefaultEmoji
		}
		consolidated = append(consolidated, domain.ReportTopic{
			ID:          topic.ID,
			Title:       topic.Title,
			Description: topic.Description,
			Impact:      topic.Impact,
			Evidence:    topic.Evidence,
			Count:       stats.TopicCounts[topic.Title],
			Percentage:  stats.TopicPercentages[topic.Title],
			Priority:    priorityFor(topic.Title, priorities),
			Emoji:       emoji,
		})
	}

	summary, err := a.gen.Generate(ctx, domain.GenerationRequest{
		System:      summarySystem,
		Prompt:      summaryPrompt(priorities),
		Temperature: summaryTemperature,
	})
	if err != nil {
		return domain.Report{}, fmt.Errorf("executive summary: %w", err)
	}

	prioritized := make([]string, 0, len(priorities))
	for _, rec := range priorities {
		prioritized = append(prioritized, rec.Raw)
	}

	extracted := make([]string, len(mentions))
	copy(extracted, mentions)

	return domain.Report{
		TopicModeling: domain.TopicModeling{
			ExtractedTopics:    extracted,
			ConsolidatedTopics: consolidated,
			PrioritizedTopics:  prioritized,
			ExecutiveSummary:   summary,
		},
	}, nil
}

// priorityFor returns the priority of the first record whose title matches.
func priorityFor(title string, records []domain.PriorityRecord) domain.Priority {
	for _, rec := range records {
		if strings.TrimSpace(rec.TopicTitle) == title {
			return rec.Priority
		}
	}
	return domain.PriorityMedium
}
