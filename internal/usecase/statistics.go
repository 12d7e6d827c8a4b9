package usecase

import "ReviewInsights/internal/domain"

// Aggregate counts reviews per topic title and converts counts to percentages
// of the association size.
func Aggregate(assoc domain.Association) domain.TopicStatistics {
	stats := domain.TopicStatistics{
		TotalReviews:     assoc.Len(),
		TopicCounts:      map[string]int{},
		TopicPercentages: map[string]float64{},
	}
	if stats.TotalReviews == 0 {
		return stats
	}

	for _, as := range assoc.Entries() {
		stats.TopicCounts[as.Topic.Title]++
	}
	total := float64(stats.TotalReviews)
	for title, count := range stats.TopicCounts {
		stats.TopicPercentages[title] = float64(count) / total * 100
	}
	return stats
}
