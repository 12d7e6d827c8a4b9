package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/ports"
)

// CronScheduler runs jobs on a standard five-field cron expression.
type CronScheduler struct {
	spec     string
	location *time.Location
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from the configured expression and timezone.
func NewCronScheduler(cfg config.SchedulerConfig, logger *slog.Logger) *CronScheduler {
	return &CronScheduler{
		spec:     cfg.CronExpression,
		location: cfg.Location(),
		logger:   logger,
	}
}

// Start registers the job and begins ticking. Calling Start twice is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cron != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.location))
	_, err := runner.AddFunc(c.spec, func() {
		job(time.Now().In(c.location))
	})
	if err != nil {
		return fmt.Errorf("parse cron expression %q: %w", c.spec, err)
	}

	runner.Start()
	c.cron = runner
	c.debug("cron started", "spec", c.spec, "timezone", c.location.String())

	if done := ctx.Done(); done != nil {
		go func() {
			<-done
			_ = c.Stop(context.Background())
		}()
	}

	return nil
}

// Stop halts the scheduler and waits for a running job until ctx is done.
func (c *CronScheduler) Stop(ctx context.Context) error {
	c.mu.Lock()
	runner := c.cron
	c.cron = nil
	c.mu.Unlock()

	if runner == nil {
		return nil
	}

	select {
	case <-runner.Stop().Done():
		c.debug("cron stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports the next activation after t, mainly for logging.
func (c *CronScheduler) Next(t time.Time) (time.Time, error) {
	schedule, err := cron.ParseStandard(c.spec)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse cron expression %q: %w", c.spec, err)
	}
	return schedule.Next(t.In(c.location)), nil
}

func (c *CronScheduler) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
