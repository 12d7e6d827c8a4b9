package ports

import (
	"context"
	"io"
	"time"

	"ReviewInsights/internal/domain"
)

// Generator is the sole boundary to the external text-generation capability.
// Implementations make one call per invocation and never retry.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req domain.GenerationRequest) (string, error)
}

// ReviewSource loads uploaded review rows.
type ReviewSource interface {
	ReadReviews(ctx context.Context, r io.Reader) ([]domain.ReviewRecord, error)
}

// SentimentClassifier scores review texts on a 1..5 star scale.
type SentimentClassifier interface {
	Classify(ctx context.Context, texts []string) ([]int, error)
}

// ReportRepository persists analysis reports for history.
type ReportRepository interface {
	Save(ctx context.Context, report domain.StoredReport) error
	Get(ctx context.Context, id string) (domain.StoredReport, error)
	List(ctx context.Context, limit int) ([]domain.StoredReport, error)
}

// Notifier streams report digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when scheduled analyses execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
