package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewInsights/internal/config"
)

func TestCronSchedulerRejectsBadExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(config.SchedulerConfig{CronExpression: "not a cron"}, nil)
	err := s.Start(context.Background(), func(time.Time) {})
	require.Error(t, err)
}

func TestCronSchedulerNext(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(config.SchedulerConfig{CronExpression: "0 6 * * *"}, nil)

	next, err := s.Next(time.Date(2024, time.March, 1, 7, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 2, 6, 0, 0, 0, time.UTC), next.UTC())
}

func TestCronSchedulerStartStop(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(config.SchedulerConfig{CronExpression: "@every 1h"}, nil)

	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))
	require.NoError(t, s.Start(context.Background(), func(time.Time) {}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestCronSchedulerIgnoresNilJob(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler(config.SchedulerConfig{CronExpression: "not a cron"}, nil)
	require.NoError(t, s.Start(context.Background(), nil))
}
