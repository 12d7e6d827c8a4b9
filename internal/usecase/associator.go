package usecase

import (
	"strings"
	"unicode/utf8"

	"ReviewInsights/internal/domain"
)

// minKeywordRunes is the length a key-phrase word must exceed to count.
const minKeywordRunes = 3

// Associate assigns every review to the topic with the highest lexical overlap.
//
// For each topic the key phrases are its title, description and evidence. Every
// word longer than three characters that occurs in the review adds one point, per
// phrase, so a word shared by two phrases counts twice. The best score is tracked
// with a strict greater-than starting below zero: the first topic wins ties and is
// the fallback when nothing overlaps.
func Associate(reviews []domain.Review, topics []domain.CanonicalTopic) domain.Association {
	if len(reviews) == 0 || len(topics) == 0 {
		return domain.NewAssociation(nil)
	}

	phrases := make([][]string, len(topics))
	for i, topic := range topics {
		phrases[i] = keyWords(topic)
	}

	assignments := make([]domain.Assignment, 0, len(reviews))
	for _, review := range reviews {
		lower := strings.ToLower(review)
		best, bestScore := 0, -1
		for i := range topics {
			if score := overlap(lower, phrases[i]); score > bestScore {
				best, bestScore = i, score
			}
		}
		assignments = append(assignments, domain.Assignment{Review: review, Topic: topics[best]})
	}

	return domain.NewAssociation(assignments)
}

// keyWords flattens the qualifying words of every key phrase, keeping duplicates
// across phrases.
func keyWords(topic domain.CanonicalTopic) []string {
	var words []string
	for _, phrase := range []string{topic.Title, topic.Description, topic.Evidence} {
		for _, word := range strings.Fields(strings.ToLower(phrase)) {
			if utf8.RuneCountInString(word) > minKeywordRunes {
				words = append(words, word)
			}
		}
	}
	return words
}

func overlap(review string, words []string) int {
	score := 0
	for _, word := range words {
		if strings.Contains(review, word) {
			score++
		}
	}
	return score
}
