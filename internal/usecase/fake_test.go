package usecase

import (
	"context"
	"strings"
	"sync"

	"ReviewInsights/internal/domain"
)

// fakeGenerator answers through a script function and records every request.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []domain.GenerationRequest
	script   func(req domain.GenerationRequest) (string, error)
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.script == nil {
		return "", domain.NewGenerationError("fake", domain.GenerationEmpty, domain.ErrEmptyResponse)
	}
	return f.script(req)
}

func (f *fakeGenerator) calls() []domain.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.GenerationRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeGenerator) callsWithPrefix(prefix string) int {
	n := 0
	for _, req := range f.calls() {
		if strings.HasPrefix(req.Prompt, prefix) {
			n++
		}
	}
	return n
}

type fakeClassifier struct {
	scores []int
	err    error
}

func (f fakeClassifier) Classify(_ context.Context, _ []string) ([]int, error) {
	return f.scores, f.err
}

type memoryRepository struct {
	mu      sync.Mutex
	reports []domain.StoredReport
	err     error
}

func (m *memoryRepository) Save(_ context.Context, report domain.StoredReport) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = append(m.reports, report)
	return nil
}

func (m *memoryRepository) Get(_ context.Context, id string) (domain.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.StoredReport{}, domain.ErrReportNotFound
}

func (m *memoryRepository) List(_ context.Context, limit int) ([]domain.StoredReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.reports) {
		limit = len(m.reports)
	}
	return append([]domain.StoredReport(nil), m.reports[:limit]...), nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	digests []string
}

func (n *recordingNotifier) PublishDigest(_ context.Context, digest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, digest)
	return nil
}
