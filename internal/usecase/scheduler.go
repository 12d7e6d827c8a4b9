package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ReviewInsights/internal/ports"
)

// SchedulerDeps wires the cron-like driver with the upload analysis.
type SchedulerDeps struct {
	Driver    ports.Scheduler
	Source    ports.ReviewSource
	Analyzer  *Analyzer
	Notifier  ports.Notifier
	InputPath string
	Options   Options
	Logger    *slog.Logger
}

// Scheduler re-analyzes a review export on every tick of the driver.
type Scheduler struct {
	driver    ports.Scheduler
	source    ports.ReviewSource
	analyzer  *Analyzer
	notifier  ports.Notifier
	inputPath string
	opts      Options
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(deps SchedulerDeps) *Scheduler {
	return &Scheduler{
		driver:    deps.Driver,
		source:    deps.Source,
		analyzer:  deps.Analyzer,
		notifier:  deps.Notifier,
		inputPath: deps.InputPath,
		opts:      deps.Options,
		logger:    deps.Logger,
	}
}

// Start registers the scheduled run with the provided driver. A failed run is
// logged and the next tick proceeds.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.analyzer == nil {
		return nil
	}

	job := func(trigger time.Time) {
		if err := s.RunOnce(ctx, trigger); err != nil && s.logger != nil {
			s.logger.Error("scheduled analysis failed", "trigger", trigger, "error", err)
		}
	}

	return s.driver.Start(ctx, job)
}

// RunOnce reads the configured export, analyzes it and publishes a digest.
func (s *Scheduler) RunOnce(ctx context.Context, trigger time.Time) error {
	if s.inputPath == "" {
		return fmt.Errorf("scheduled analysis: input path not configured")
	}

	f, err := os.Open(s.inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	records, err := s.source.ReadReviews(ctx, f)
	if err != nil {
		return fmt.Errorf("read reviews: %w", err)
	}

	name := filepath.Base(s.inputPath)
	result, err := s.analyzer.Analyze(ctx, name, records, s.opts)
	if err != nil {
		return fmt.Errorf("analyze %s: %w", name, err)
	}
	if s.logger != nil {
		s.logger.Info("scheduled analysis finished",
			"trigger", trigger,
			"reviews", result.TotalReviews,
			"topics", len(result.TopicModeling.ConsolidatedTopics),
			"report_id", result.ReportID,
		)
	}

	if s.notifier == nil {
		return nil
	}
	digest := BuildDigest(name, result.TotalReviews, result.Report(), 0)
	if err := s.notifier.PublishDigest(ctx, digest); err != nil {
		return fmt.Errorf("publish digest: %w", err)
	}
	return nil
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
