package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/infrastructure/httpapi"
	"ReviewInsights/internal/infrastructure/llm"
	"ReviewInsights/internal/infrastructure/ml"
	"ReviewInsights/internal/infrastructure/parser"
	"ReviewInsights/internal/infrastructure/scheduler"
	"ReviewInsights/internal/infrastructure/storage"
	"ReviewInsights/internal/infrastructure/telegram"
	"ReviewInsights/internal/logging"
	"ReviewInsights/internal/ports"
	"ReviewInsights/internal/provider"
	"ReviewInsights/internal/usecase"
)

const stopTimeout = 30 * time.Second

// ErrStorageDisabled is returned when persistence is requested without a database DSN.
var ErrStorageDisabled = errors.New("report storage is not configured")

// ErrNotifierDisabled is returned when a digest is requested without Telegram settings.
var ErrNotifierDisabled = errors.New("telegram notifier is not configured")

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	source     *parser.CSVSource
	pipeline   *usecase.Pipeline
	classifier ports.SentimentClassifier
	store      *storage.ReportRepository
	notifier   ports.Notifier
}

// Registry returns the generation providers known to the application.
func Registry() *provider.Registry {
	registry := provider.NewRegistry()
	registry.Register(provider.FactoryFunc{
		ID: "openai",
		Build: func(_ context.Context, cfg config.GenerationConfig) (ports.Generator, error) {
			return llm.NewOpenAIGateway(cfg)
		},
	})
	registry.Register(provider.FactoryFunc{
		ID: "anthropic",
		Build: func(_ context.Context, cfg config.GenerationConfig) (ports.Generator, error) {
			return llm.NewAnthropicGateway(cfg)
		},
	})
	registry.Register(provider.FactoryFunc{
		ID: "gemini",
		Build: func(ctx context.Context, cfg config.GenerationConfig) (ports.Generator, error) {
			return llm.NewGeminiGateway(ctx, cfg)
		},
	})
	return registry
}

// New builds the application. Misconfiguration of a required collaborator
// fails here rather than during a run.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	gateway, err := Registry().Build(ctx, cfg.Generation)
	if err != nil {
		return nil, fmt.Errorf("generation gateway: %w", err)
	}
	generator := llm.Chain(gateway,
		llm.WithLogging(baseLogger.With("component", "llm")),
		llm.WithRetry(cfg.Generation.MaxAttempts, cfg.Generation.RetryDelay),
		llm.WithTimeout(cfg.Generation.Timeout),
	)

	a := &Application{
		cfg:    cfg,
		logger: baseLogger,
		source: parser.NewCSVSource(baseLogger.With("component", "source.csv")),
		pipeline: usecase.NewPipeline(usecase.PipelineDeps{
			Generator: generator,
			Workers:   cfg.Analysis.Workers,
			Logger:    baseLogger.With("component", "pipeline"),
		}),
	}

	if cfg.ML.InferenceURL != "" {
		a.classifier = ml.NewClient(cfg.ML)
	}

	if cfg.Database.DSN != "" {
		store, err := storage.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("report storage: %w", err)
		}
		a.store = store
	}

	if cfg.Notifications.Telegram.BotToken != "" {
		notifier, err := telegram.NewNotifier(cfg.Notifications.Telegram)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("telegram: %w", err)
		}
		a.notifier = notifier
	}

	baseLogger.Info("application ready",
		"provider", gateway.Name(),
		"sentiment", a.classifier != nil,
		"storage", a.store != nil,
		"telegram", a.notifier != nil,
	)
	return a, nil
}

// Options converts the analysis config into pipeline options.
func (a *Application) Options() usecase.Options {
	return usecase.Options{
		MinTopics: a.cfg.Analysis.MinTopics,
		MaxTopics: a.cfg.Analysis.MaxTopics,
		BatchSize: a.cfg.Analysis.BatchSize,
	}
}

// AnalyzeFile runs one upload analysis over a CSV file, optionally storing
// the report and publishing a digest.
func (a *Application) AnalyzeFile(ctx context.Context, path string, opts usecase.Options, save, notify bool) (usecase.UploadResult, error) {
	if save && a.store == nil {
		return usecase.UploadResult{}, ErrStorageDisabled
	}
	if notify && a.notifier == nil {
		return usecase.UploadResult{}, ErrNotifierDisabled
	}

	f, err := os.Open(path)
	if err != nil {
		return usecase.UploadResult{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	records, err := a.source.ReadReviews(ctx, f)
	if err != nil {
		return usecase.UploadResult{}, fmt.Errorf("read reviews: %w", err)
	}

	name := filepath.Base(path)
	result, err := a.analyzer(save).Analyze(ctx, name, records, opts)
	if err != nil {
		return usecase.UploadResult{}, err
	}

	if notify {
		digest := usecase.BuildDigest(name, result.TotalReviews, result.Report(), 0)
		if err := a.notifier.PublishDigest(ctx, digest); err != nil {
			return result, fmt.Errorf("publish digest: %w", err)
		}
	}
	return result, nil
}

// Serve runs the HTTP API until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	var repo ports.ReportRepository
	if a.store != nil {
		repo = a.store
	}

	server := httpapi.NewServer(httpapi.Deps{
		Source:         a.source,
		Analyzer:       a.analyzer(a.store != nil),
		Repository:     repo,
		Options:        a.Options(),
		MaxUploadBytes: a.cfg.HTTP.MaxUploadBytes,
		Logger:         a.logger.With("component", "http"),
	})
	return server.ListenAndServe(ctx, a.cfg.HTTP.Addr)
}

// Schedule runs the configured export on the cron schedule until ctx is cancelled.
func (a *Application) Schedule(ctx context.Context) error {
	if a.cfg.Scheduler.InputPath == "" {
		return fmt.Errorf("scheduler: input path is not configured")
	}

	driver := scheduler.NewCronScheduler(a.cfg.Scheduler, a.logger.With("component", "cron"))
	job := usecase.NewScheduler(usecase.SchedulerDeps{
		Driver:    driver,
		Source:    a.source,
		Analyzer:  a.analyzer(a.store != nil),
		Notifier:  a.notifier,
		InputPath: a.cfg.Scheduler.InputPath,
		Options:   a.Options(),
		Logger:    a.logger.With("component", "scheduler"),
	})

	if err := job.Start(ctx); err != nil {
		return err
	}
	if next, err := driver.Next(time.Now().In(a.cfg.Scheduler.Location())); err == nil {
		a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression, "next_run", next)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return job.Stop(stopCtx)
}

// Close releases the report store.
func (a *Application) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

func (a *Application) analyzer(withStore bool) *usecase.Analyzer {
	deps := usecase.UploadDeps{
		Pipeline:   a.pipeline,
		Classifier: a.classifier,
		Logger:     a.logger.With("component", "upload"),
	}
	if withStore && a.store != nil {
		deps.Repository = a.store
	}
	return usecase.NewAnalyzer(deps)
}
