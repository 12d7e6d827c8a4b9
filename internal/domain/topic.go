package domain

import "strings"

// CanonicalTopic is a consolidated topic; Title is the join key across stages.
type CanonicalTopic struct {
	ID          string
	Title       string
	Description string
	Impact      string
	Evidence    string
	Emoji       string
	Raw         string
}

// Priority enumerates business priority tiers.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ParsePriority maps free text onto a tier; anything unrecognised is MEDIUM.
func ParsePriority(value string) Priority {
	upper := strings.ToUpper(value)
	switch {
	case strings.Contains(upper, string(PriorityHigh)):
		return PriorityHigh
	case strings.Contains(upper, string(PriorityLow)):
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// PriorityRecord is one ranked entry returned by the prioritization call.
type PriorityRecord struct {
	Priority    Priority
	TopicTitle  string
	Description string
	Impact      string
	Evidence    string
	Raw         string
}

// Assignment binds one review to the topic it was associated with.
type Assignment struct {
	Review Review
	Topic  CanonicalTopic
}

// Association maps every distinct review to exactly one topic.
// It keeps first-seen review order and is read-only once built.
type Association struct {
	entries []Assignment
	index   map[Review]int
}

// NewAssociation builds an association from assignments; a repeated review keeps
// its first position and its last topic.
func NewAssociation(assignments []Assignment) Association {
	a := Association{index: make(map[Review]int, len(assignments))}
	for _, as := range assignments {
		if i, ok := a.index[as.Review]; ok {
			a.entries[i].Topic = as.Topic
			continue
		}
		a.index[as.Review] = len(a.entries)
		a.entries = append(a.entries, as)
	}
	return a
}

// Len returns the number of distinct reviews.
func (a Association) Len() int {
	return len(a.entries)
}

// Lookup returns the topic assigned to review.
func (a Association) Lookup(review Review) (CanonicalTopic, bool) {
	i, ok := a.index[review]
	if !ok {
		return CanonicalTopic{}, false
	}
	return a.entries[i].Topic, true
}

// Entries returns a copy of the assignments in review order.
func (a Association) Entries() []Assignment {
	out := make([]Assignment, len(a.entries))
	copy(out, a.entries)
	return out
}

// TopicStatistics holds per-topic frequency derived from an Association.
type TopicStatistics struct {
	TotalReviews     int                `json:"total_reviews"`
	TopicCounts      map[string]int     `json:"topic_counts"`
	TopicPercentages map[string]float64 `json:"topic_percentages"`
}
