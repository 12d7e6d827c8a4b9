package usecase

import (
	"fmt"
	"sort"
	"strings"

	"ReviewInsights/internal/domain"
)

const defaultDigestTopics = 5

// BuildDigest renders the most frequent topics and the executive summary as a
// plain-text message.
func BuildDigest(source string, reviewCount int, report domain.Report, topN int) string {
	if topN <= 0 {
		topN = defaultDigestTopics
	}

	topics := make([]domain.ReportTopic, len(report.TopicModeling.ConsolidatedTopics))
	copy(topics, report.TopicModeling.ConsolidatedTopics)
	sort.SliceStable(topics, func(i, j int) bool { return topics[i].Count > topics[j].Count })
	if len(topics) > topN {
		topics = topics[:topN]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Review insights for %s (%d reviews)\n", source, reviewCount)
	for _, t := range topics {
		fmt.Fprintf(&b, "\n%s %s [%s] %.1f%% (%d)", t.Emoji, t.Title, t.Priority, t.Percentage, t.Count)
	}
	if summary := strings.TrimSpace(report.TopicModeling.ExecutiveSummary); summary != "" {
		b.WriteString("\n\nExecutive summary:\n")
		b.WriteString(summary)
	}
	return b.String()
}
