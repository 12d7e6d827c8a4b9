package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

const dateLayout = "2006-01-02"

// ErrNoReviews is returned when an upload holds no analyzable review.
var ErrNoReviews = errors.New("no reviews found")

// ErrSentimentMismatch is returned when the classifier scores a different
// number of texts than it was sent.
var ErrSentimentMismatch = errors.New("sentiment score count mismatch")

// UploadDeps wires the pipeline with the optional sentiment and storage adapters.
type UploadDeps struct {
	Pipeline   *Pipeline
	Classifier ports.SentimentClassifier
	Repository ports.ReportRepository
	Logger     *slog.Logger
	Now        func() time.Time
}

// Analyzer turns an uploaded batch of review rows into the merged upload response.
type Analyzer struct {
	pipeline   *Pipeline
	classifier ports.SentimentClassifier
	repository ports.ReportRepository
	logger     *slog.Logger
	now        func() time.Time
}

// UploadResult is the response of one upload analysis. Rating fields are
// present only when a sentiment classifier is configured.
type UploadResult struct {
	SentimentAnalysis map[string]float64   `json:"sentiment_analysis,omitempty"`
	TotalReviews      int                  `json:"total_reviews"`
	AverageRating     *float64             `json:"average_rating,omitempty"`
	MedianRating      *int                 `json:"median_rating,omitempty"`
	TimePeriod        string               `json:"time_period"`
	AllData           []ReviewRow          `json:"all_data"`
	Grouped           []DateSentimentCount `json:"grouped"`
	TopicModeling     domain.TopicModeling `json:"topic_modeling"`
	ReportID          string               `json:"report_id,omitempty"`
}

// Report returns the topic report carried by an upload result.
func (r UploadResult) Report() domain.Report {
	return domain.Report{TopicModeling: r.TopicModeling}
}

// ReviewRow echoes one uploaded review.
type ReviewRow struct {
	At             string `json:"at,omitempty"`
	SentimentScore int    `json:"sentiment_score,omitempty"`
	Content        string `json:"content"`
}

// DateSentimentCount counts reviews sharing a calendar date and sentiment score.
type DateSentimentCount struct {
	Date           string `json:"date"`
	SentimentScore int    `json:"sentiment_score"`
	Count          int    `json:"count"`
}

// NewAnalyzer builds the upload analysis use case.
func NewAnalyzer(deps UploadDeps) *Analyzer {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Analyzer{
		pipeline:   deps.Pipeline,
		classifier: deps.Classifier,
		repository: deps.Repository,
		logger:     deps.Logger,
		now:        now,
	}
}

// Analyze scores sentiment when a classifier is wired, runs the topic
// pipeline and stores the report when a repository is wired.
func (a *Analyzer) Analyze(ctx context.Context, source string, records []domain.ReviewRecord, opts Options) (UploadResult, error) {
	if len(records) == 0 {
		return UploadResult{}, ErrNoReviews
	}

	rows := make([]domain.ReviewRecord, len(records))
	copy(rows, records)

	withSentiment := a.classifier != nil
	if withSentiment {
		scores, err := a.classifier.Classify(ctx, domain.Reviews(rows))
		if err != nil {
			return UploadResult{}, fmt.Errorf("classify sentiment: %w", err)
		}
		if len(scores) != len(rows) {
			return UploadResult{}, fmt.Errorf("classify sentiment: %w: got %d for %d reviews", ErrSentimentMismatch, len(scores), len(rows))
		}
		for i := range rows {
			rows[i].Sentiment = scores[i]
		}
	}

	report, err := a.pipeline.RunAnalysis(ctx, domain.Reviews(rows), opts)
	if err != nil {
		return UploadResult{}, err
	}

	result := UploadResult{
		TotalReviews:  len(rows),
		TimePeriod:    timePeriod(rows),
		AllData:       allData(rows),
		Grouped:       groupByDate(rows),
		TopicModeling: report.TopicModeling,
	}
	if withSentiment {
		avg, median := ratings(rows)
		result.SentimentAnalysis = starDistribution(rows)
		result.AverageRating = &avg
		result.MedianRating = &median
	}

	if a.repository != nil {
		stored := domain.StoredReport{
			ID:          ulid.Make().String(),
			Source:      source,
			ReviewCount: len(rows),
			Report:      report,
			CreatedAt:   a.now().UTC(),
		}
		if err := a.repository.Save(ctx, stored); err != nil {
			return UploadResult{}, fmt.Errorf("save report: %w", err)
		}
		result.ReportID = stored.ID
		if a.logger != nil {
			a.logger.Info("report stored", "id", stored.ID, "source", source)
		}
	}

	return result, nil
}

func starDistribution(rows []domain.ReviewRecord) map[string]float64 {
	counts := make(map[int]int, 5)
	for _, r := range rows {
		counts[r.Sentiment]++
	}
	out := make(map[string]float64, 5)
	for star := 1; star <= 5; star++ {
		out[fmt.Sprintf("%d-star", star)] = round(float64(counts[star])/float64(len(rows))*100, 2)
	}
	return out
}

// ratings returns the mean rounded to one decimal and the median truncated to an int.
func ratings(rows []domain.ReviewRecord) (float64, int) {
	scores := make([]int, len(rows))
	sum := 0
	for i, r := range rows {
		scores[i] = r.Sentiment
		sum += r.Sentiment
	}
	sort.Ints(scores)

	mid := len(scores) / 2
	median := float64(scores[mid])
	if len(scores)%2 == 0 {
		median = float64(scores[mid-1]+scores[mid]) / 2
	}
	return round(float64(sum)/float64(len(scores)), 1), int(median)
}

func timePeriod(rows []domain.ReviewRecord) string {
	var first, last time.Time
	seen := false
	for _, r := range rows {
		if !r.HasAt {
			continue
		}
		if !seen || r.At.Before(first) {
			first = r.At
		}
		if !seen || r.At.After(last) {
			last = r.At
		}
		seen = true
	}
	if !seen {
		return ""
	}
	return first.Format(dateLayout) + " to " + last.Format(dateLayout)
}

func allData(rows []domain.ReviewRecord) []ReviewRow {
	out := make([]ReviewRow, 0, len(rows))
	for _, r := range rows {
		row := ReviewRow{SentimentScore: r.Sentiment, Content: r.Content}
		if r.HasAt {
			row.At = r.At.Format(time.RFC3339)
		}
		out = append(out, row)
	}
	return out
}

// groupByDate counts dated reviews per (date, score), newest date first.
func groupByDate(rows []domain.ReviewRecord) []DateSentimentCount {
	type key struct {
		date  string
		score int
	}
	counts := make(map[key]int)
	for _, r := range rows {
		if !r.HasAt {
			continue
		}
		counts[key{date: r.At.Format(dateLayout), score: r.Sentiment}]++
	}

	out := make([]DateSentimentCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, DateSentimentCount{Date: k.date, SentimentScore: k.score, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].SentimentScore < out[j].SentimentScore
	})
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
