package usecase

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/logging"
)

// lineSource treats every non-empty line as one review.
type lineSource struct{}

func (lineSource) ReadReviews(_ context.Context, r io.Reader) ([]domain.ReviewRecord, error) {
	var out []domain.ReviewRecord
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := sc.Text(); line != "" {
			out = append(out, domain.ReviewRecord{Content: line})
		}
	}
	return out, sc.Err()
}

// manualDriver keeps the registered job so tests can fire it.
type manualDriver struct {
	mu      sync.Mutex
	job     func(time.Time)
	stopped bool
}

func (d *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.job = job
	return nil
}

func (d *manualDriver) Stop(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	return nil
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reviews.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSchedulerRunOnce(t *testing.T) {
	t.Parallel()

	repo := &memoryRepository{}
	notifier := &recordingNotifier{}
	s := NewScheduler(SchedulerDeps{
		Source:    lineSource{},
		Analyzer:  NewAnalyzer(UploadDeps{Pipeline: NewPipeline(PipelineDeps{Generator: scriptedPipeline(nil)}), Repository: repo}),
		Notifier:  notifier,
		InputPath: writeInput(t, "Login fails daily\nSo slow\n"),
		Logger:    logging.Discard(),
	})

	require.NoError(t, s.RunOnce(context.Background(), time.Now()))

	require.Len(t, repo.reports, 1)
	assert.Equal(t, "reviews.csv", repo.reports[0].Source)
	require.Len(t, notifier.digests, 1)
	assert.Contains(t, notifier.digests[0], "Review insights for reviews.csv (2 reviews)")
	assert.Contains(t, notifier.digests[0], "Executive summary text")
}

func TestSchedulerRunOnceErrors(t *testing.T) {
	t.Parallel()

	analyzer := NewAnalyzer(UploadDeps{Pipeline: NewPipeline(PipelineDeps{Generator: scriptedPipeline(nil)})})

	err := NewScheduler(SchedulerDeps{Source: lineSource{}, Analyzer: analyzer}).RunOnce(context.Background(), time.Now())
	require.Error(t, err)

	missing := filepath.Join(t.TempDir(), "missing.csv")
	err = NewScheduler(SchedulerDeps{Source: lineSource{}, Analyzer: analyzer, InputPath: missing}).RunOnce(context.Background(), time.Now())
	require.ErrorIs(t, err, os.ErrNotExist)

	err = NewScheduler(SchedulerDeps{Source: lineSource{}, Analyzer: analyzer, InputPath: writeInput(t, "")}).RunOnce(context.Background(), time.Now())
	require.ErrorIs(t, err, ErrNoReviews)
}

func TestSchedulerStartRegistersJob(t *testing.T) {
	t.Parallel()

	driver := &manualDriver{}
	notifier := &recordingNotifier{}
	s := NewScheduler(SchedulerDeps{
		Driver:    driver,
		Source:    lineSource{},
		Analyzer:  NewAnalyzer(UploadDeps{Pipeline: NewPipeline(PipelineDeps{Generator: scriptedPipeline(nil)})}),
		Notifier:  notifier,
		InputPath: writeInput(t, "So slow\n"),
		Logger:    logging.Discard(),
	})

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(time.Now())
	driver.job(time.Now())
	assert.Len(t, notifier.digests, 2)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}
