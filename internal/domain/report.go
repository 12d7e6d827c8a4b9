package domain

import "time"

// DefaultEmoji is used when a topic carries no suggested glyph.
const DefaultEmoji = "📦"

// Report is the terminal artifact of one analysis run.
type Report struct {
	TopicModeling TopicModeling `json:"topic_modeling"`
}

// TopicModeling groups every output of the topic pipeline.
type TopicModeling struct {
	ExtractedTopics    []string      `json:"extracted_topics"`
	ConsolidatedTopics []ReportTopic `json:"consolidated_topics"`
	PrioritizedTopics  []string      `json:"prioritized_topics"`
	ExecutiveSummary   string        `json:"executive_summary"`
}

// ReportTopic is a canonical topic enriched with frequency and priority. ID is
// stable within one report and addresses the topic in stored payloads.
type ReportTopic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      string   `json:"impact"`
	Evidence    string   `json:"evidence"`
	Count       int      `json:"count"`
	Percentage  float64  `json:"percentage"`
	Priority    Priority `json:"priority"`
	Emoji       string   `json:"emoji"`
}

// StoredReport is a report persisted for later retrieval.
type StoredReport struct {
	ID          string
	Source      string
	ReviewCount int
	Report      Report
	CreatedAt   time.Time
}
