package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/infrastructure/parser"
	"ReviewInsights/internal/logging"
	"ReviewInsights/internal/ports"
	"ReviewInsights/internal/usecase"
)

// stubGenerator answers by prompt prefix.
type stubGenerator struct {
	err error
}

func (stubGenerator) Name() string { return "stub" }

func (g stubGenerator) Generate(_ context.Context, req domain.GenerationRequest) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	switch {
	case strings.HasPrefix(req.Prompt, "Analyze"):
		return "TOPIC: Login problems\nDESCRIPTION: login fails\nEVIDENCE: login fails", nil
	case strings.HasPrefix(req.Prompt, "Rank"):
		return "PRIORITY: HIGH\nTOPIC: Login problems", nil
	case strings.HasPrefix(req.Prompt, "Create an executive summary"):
		return "Fix login.", nil
	}
	return "", errors.New("unexpected prompt")
}

type memoryRepo struct {
	reports []domain.StoredReport
}

func (m *memoryRepo) Save(_ context.Context, r domain.StoredReport) error {
	m.reports = append(m.reports, r)
	return nil
}

func (m *memoryRepo) Get(_ context.Context, id string) (domain.StoredReport, error) {
	for _, r := range m.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.StoredReport{}, domain.ErrReportNotFound
}

func (m *memoryRepo) List(_ context.Context, limit int) ([]domain.StoredReport, error) {
	if limit <= 0 || limit > len(m.reports) {
		limit = len(m.reports)
	}
	return m.reports[:limit], nil
}

func newTestServer(gen ports.Generator, repo ports.ReportRepository) http.Handler {
	return newServerWith(gen, repo, 0, nil)
}

func newServerWith(gen ports.Generator, repo ports.ReportRepository, maxUpload int64, logger *slog.Logger) http.Handler {
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{Generator: gen})
	return NewServer(Deps{
		Source:         parser.NewCSVSource(nil),
		Analyzer:       usecase.NewAnalyzer(usecase.UploadDeps{Pipeline: pipeline, Repository: repo}),
		Repository:     repo,
		MaxUploadBytes: maxUpload,
		Logger:         logger,
	}).Routes()
}

func uploadRequest(t *testing.T, csv string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "reviews.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestIndex(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(stubGenerator{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, map[string]any{"ok": "API works"}, decode(t, rec))
}

func TestAnalyzeAndFetchReport(t *testing.T) {
	t.Parallel()

	repo := &memoryRepo{}
	handler := newTestServer(stubGenerator{}, repo)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "content,at\nLogin fails daily,2024-03-01\nLogin fails again,2024-03-02\n"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.EqualValues(t, 2, body["total_reviews"])
	assert.Equal(t, "2024-03-01 to 2024-03-02", body["time_period"])
	assert.NotContains(t, body, "sentiment_analysis")
	tm := body["topic_modeling"].(map[string]any)
	assert.Equal(t, "Fix login.", tm["executive_summary"])

	id, _ := body["report_id"].(string)
	require.NotEmpty(t, id)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reviews.csv", decode(t, rec)["source"])

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["reports"], 1)
}

func TestAnalyzeStatusMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		gen    ports.Generator
		csv    string
		status int
		msg    string
	}{
		{"missing content", stubGenerator{}, "text\nhello\n", http.StatusBadRequest, "missing 'content' column!"},
		{"no reviews", stubGenerator{}, "content\n \n", http.StatusBadRequest, "No reviews found in the CSV file."},
		{
			"generation failure",
			stubGenerator{err: domain.NewGenerationError("stub", domain.GenerationTransport, errors.New("down"))},
			"content\nLogin fails\n",
			http.StatusBadGateway,
			"analysis failed",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			newTestServer(tc.gen, nil).ServeHTTP(rec, uploadRequest(t, tc.csv))
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.msg, decode(t, rec)["error"])
		})
	}
}

func TestAnalyzeRequiresFile(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(stubGenerator{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader("")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRejectsOversizedUpload(t *testing.T) {
	t.Parallel()

	csv := "content\n" + strings.Repeat("Login fails every single morning\n", 30)
	rec := httptest.NewRecorder()
	newServerWith(stubGenerator{}, nil, 64, nil).ServeHTTP(rec, uploadRequest(t, csv))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "file exceeds 64 bytes", decode(t, rec)["error"])
}

func TestRequestsAreLoggedThroughSlog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	handler := newServerWith(stubGenerator{}, nil, 0, logging.NewWithWriter(&buf, "info"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	logged := buf.String()
	assert.Contains(t, logged, `msg="http request"`)
	assert.Contains(t, logged, "status=200")
	assert.Contains(t, logged, "method=GET")
	assert.Contains(t, logged, "path=/")
}

func TestReportsEndpoints(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestServer(stubGenerator{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	repo := &memoryRepo{reports: []domain.StoredReport{{ID: "a", CreatedAt: time.Now()}}}
	handler := newTestServer(stubGenerator{}, repo)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewServer(Deps{}).ListenAndServe(ctx, "127.0.0.1:0")
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
