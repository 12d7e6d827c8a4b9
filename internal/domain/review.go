package domain

import "time"

// Review is the raw text of a single user review; its text is its identity.
type Review = string

// RawTopicMention is one free-text topic block produced by an extraction call.
type RawTopicMention = string

// ReviewRecord is an uploaded review row together with its optional metadata.
type ReviewRecord struct {
	Content   string
	At        time.Time
	HasAt     bool
	Sentiment int
}

// Reviews returns the review texts in input order.
func Reviews(records []ReviewRecord) []Review {
	out := make([]Review, 0, len(records))
	for _, r := range records {
		out = append(out, r.Content)
	}
	return out
}
