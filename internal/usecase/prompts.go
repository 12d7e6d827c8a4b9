package usecase

import (
	"fmt"
	"strings"

	"ReviewInsights/internal/domain"
)

const (
	extractionSystem    = "You are an expert product analyst."
	consolidationSystem = "You are a product analytics expert."
	prioritySystem      = "You are a product analytics expert."
	summarySystem       = "You are a product analytics director."

	analysisTemperature = 0.3
	summaryTemperature  = 0.4
)

func extractionPrompt(batch []domain.Review) string {
	lines := make([]string, 0, len(batch))
	for i, review := range batch {
		lines = append(lines, fmt.Sprintf("Review %d: %s", i+1, review))
	}

	return fmt.Sprintf(`Analyze these app reviews and identify specific, actionable topics for product managers.
For each topic:
1. Be specific (e.g., avoid "UI issues")
2. Focus on concrete problems
3. Include examples from reviews
Separate topics with a blank line and format each topic as:
TOPIC: [Brief name]
DESCRIPTION: [1-2 sentence description]
IMPACT: [How this affects users]
EVIDENCE: [Direct quotes from reviews]

Reviews:
%s`, strings.Join(lines, "\n\n"))
}

func consolidationPrompt(mentions []domain.RawTopicMention, minTopics, maxTopics int) string {
	numbered := make([]string, 0, len(mentions))
	for i, mention := range mentions {
		numbered = append(numbered, fmt.Sprintf("TOPIC %d:\n%s", i+1, strings.TrimSpace(mention)))
	}

	return fmt.Sprintf(`Consolidate these %d topics into %d-%d meaningful groups.
For each group give a brief actionable title, a 1-2 sentence description, how it
affects users, direct quotes from reviews and a single relevant emoji.
Format each group as:
TITLE: [Title]
DESCRIPTION: [Description]
IMPACT: [Impact]
EVIDENCE: [Evidence]
EMOJI: [Emoji]

Topics:
%s`, len(mentions), minTopics, maxTopics, strings.Join(numbered, "\n\n"))
}

func priorityPrompt(topics []domain.CanonicalTopic) string {
	blocks := make([]string, 0, len(topics))
	for _, topic := range topics {
		blocks = append(blocks, topicSummary(topic))
	}

	return fmt.Sprintf(`Rank these topics by priority for a product team, based on:
- User impact
- Frequency
- Business impact
Format each as:
PRIORITY: [HIGH/MEDIUM/LOW]
TOPIC: [Title]
DESCRIPTION: [Description]
IMPACT: [Impact]
EVIDENCE: [Evidence]

Topics:
%s`, strings.Join(blocks, "\n\n"))
}

func summaryPrompt(records []domain.PriorityRecord) string {
	blocks := make([]string, 0, len(records))
	for _, rec := range records {
		blocks = append(blocks, rec.Raw)
	}

	return fmt.Sprintf(`Create an executive summary for product managers based on these prioritized topics:
%s

Include:
1. SUMMARY: 3-5 sentence overview
2. KEY RECOMMENDED ACTIONS: Top 3 actions with:
   - Problem Statement
   - Business Impact
   - Recommended Action
   - Key Metrics to Follow
Format as a professional markdown report with headings.`, strings.Join(blocks, "\n\n"))
}

// topicSummary renders a topic the way the consolidation call formats it.
func topicSummary(topic domain.CanonicalTopic) string {
	if strings.TrimSpace(topic.Raw) != "" {
		return strings.TrimSpace(topic.Raw)
	}
	return fmt.Sprintf("TITLE: %s\nDESCRIPTION: %s\nIMPACT: %s\nEVIDENCE: %s\nEMOJI: %s",
		topic.Title, topic.Description, topic.Impact, topic.Evidence, topic.Emoji)
}
