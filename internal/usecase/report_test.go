package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewInsights/internal/domain"
)

func TestAssembleEnrichesTopicsWithDefaults(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{script: func(req domain.GenerationRequest) (string, error) {
		return "# Summary\nFix login first.", nil
	}}
	topics := []domain.CanonicalTopic{
		{ID: "t1", Title: "Login", Description: "cannot sign in", Emoji: "🔐"},
		{ID: "t2", Title: "Dark mode"},
	}
	priorities := []domain.PriorityRecord{
		{Priority: domain.PriorityHigh, TopicTitle: " Login ", Raw: "PRIORITY: HIGH\nTOPIC: Login"},
		{Priority: domain.PriorityLow, TopicTitle: "Something else", Raw: "PRIORITY: LOW\nTOPIC: Something else"},
	}
	assoc := domain.NewAssociation([]domain.Assignment{
		{Review: "login broken", Topic: topics[0]},
		{Review: "cannot log in", Topic: topics[0]},
	})

	report, err := NewAssembler(gen).Assemble(context.Background(),
		[]domain.RawTopicMention{"TOPIC: Login"}, topics, priorities, assoc, Aggregate(assoc))
	require.NoError(t, err)

	tm := report.TopicModeling
	assert.Equal(t, []string{"TOPIC: Login"}, tm.ExtractedTopics)
	assert.Equal(t, "# Summary\nFix login first.", tm.ExecutiveSummary)
	assert.Equal(t, []string{"PRIORITY: HIGH\nTOPIC: Login", "PRIORITY: LOW\nTOPIC: Something else"}, tm.PrioritizedTopics)

	require.Len(t, tm.ConsolidatedTopics, 2)
	assert.Equal(t, domain.ReportTopic{
		ID: "t1", Title: "Login", Description: "cannot sign in",
		Count: 2, Percentage: 100, Priority: domain.PriorityHigh, Emoji: "🔐",
	}, tm.ConsolidatedTopics[0])
	assert.Equal(t, domain.ReportTopic{
		ID: "t2", Title: "Dark mode", Count: 0, Percentage: 0, Priority: domain.PriorityMedium, Emoji: domain.DefaultEmoji,
	}, tm.ConsolidatedTopics[1])

	calls := gen.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, summarySystem, calls[0].System)
	assert.InDelta(t, 0.4, calls[0].Temperature, 1e-9)
	assert.Contains(t, calls[0].Prompt, "PRIORITY: LOW\nTOPIC: Something else")
}

func TestAssembleDerivesStatisticsFromAssociation(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{script: func(domain.GenerationRequest) (string, error) { return "summary", nil }}
	topic := domain.CanonicalTopic{Title: "Only"}
	assoc := domain.NewAssociation([]domain.Assignment{{Review: "r", Topic: topic}})

	report, err := NewAssembler(gen).Assemble(context.Background(), nil,
		[]domain.CanonicalTopic{topic}, nil, assoc, domain.TopicStatistics{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.TopicModeling.ConsolidatedTopics[0].Count)
}

func TestAssembleSummaryFailure(t *testing.T) {
	t.Parallel()

	boom := domain.NewGenerationError("fake", domain.GenerationTransport, errors.New("timeout"))
	gen := &fakeGenerator{script: func(domain.GenerationRequest) (string, error) { return "", boom }}

	_, err := NewAssembler(gen).Assemble(context.Background(), nil, nil, nil, domain.NewAssociation(nil), Aggregate(domain.NewAssociation(nil)))
	require.ErrorIs(t, err, boom)
}

func TestPriorityForUsesFirstMatch(t *testing.T) {
	t.Parallel()

	records := []domain.PriorityRecord{
		{Priority: domain.PriorityLow, TopicTitle: "A"},
		{Priority: domain.PriorityHigh, TopicTitle: "A"},
	}
	assert.Equal(t, domain.PriorityLow, priorityFor("A", records))
	assert.Equal(t, domain.PriorityMedium, priorityFor("B", records))
}
