package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ReviewInsights/internal/app"
	"ReviewInsights/internal/config"
	"ReviewInsights/internal/logging"
)

type analyzeFlags struct {
	input     string
	output    string
	minTopics int
	maxTopics int
	batchSize int
	save      bool
	notify    bool
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reviewinsights",
		Short:         "reviewinsights - topic analytics for app reviews",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newServeCmd(), newScheduleCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var flags analyzeFlags
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a CSV export of reviews and print the report as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), flags, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "CSV file with a content column")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write the JSON result to this file instead of stdout")
	cmd.Flags().IntVar(&flags.minTopics, "min-topics", 0, "minimum number of consolidated topics (default from config)")
	cmd.Flags().IntVar(&flags.maxTopics, "max-topics", 0, "maximum number of consolidated topics (default from config)")
	cmd.Flags().IntVar(&flags.batchSize, "batch-size", 0, "reviews per extraction call (default from config)")
	cmd.Flags().BoolVar(&flags.save, "save", false, "store the report in the configured database")
	cmd.Flags().BoolVar(&flags.notify, "notify", false, "send a digest to the configured Telegram chat")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP upload API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.Serve(ctx)
			})
		},
	}
}

func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Re-analyze the configured export on the cron schedule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApplication(cmd.Context(), func(ctx context.Context, a *app.Application) error {
				return a.Schedule(ctx)
			})
		},
	}
}

func runAnalyze(ctx context.Context, flags analyzeFlags, stdout io.Writer) error {
	return withApplication(ctx, func(ctx context.Context, a *app.Application) error {
		opts := a.Options()
		if flags.minTopics > 0 {
			opts.MinTopics = flags.minTopics
		}
		if flags.maxTopics > 0 {
			opts.MaxTopics = flags.maxTopics
		}
		if flags.batchSize > 0 {
			opts.BatchSize = flags.batchSize
		}

		result, err := a.AnalyzeFile(ctx, flags.input, opts, flags.save, flags.notify)
		if err != nil {
			return err
		}

		out := stdout
		if flags.output != "" {
			f, err := os.Create(flags.output)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result)
	})
}

func withApplication(ctx context.Context, fn func(context.Context, *app.Application) error) error {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	return fn(ctx, application)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
