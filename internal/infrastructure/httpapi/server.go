package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/infrastructure/parser"
	"ReviewInsights/internal/logging"
	"ReviewInsights/internal/ports"
	"ReviewInsights/internal/usecase"
)

const (
	defaultMaxUpload = 32 << 20
	uploadField      = "file"
	shutdownTimeout  = 10 * time.Second
)

// Deps wires the use cases behind the HTTP surface. Repository may be nil.
type Deps struct {
	Source         ports.ReviewSource
	Analyzer       *usecase.Analyzer
	Repository     ports.ReportRepository
	Options        usecase.Options
	MaxUploadBytes int64
	Logger         *slog.Logger
}

// Server exposes the upload analysis and report history over HTTP.
type Server struct {
	source    ports.ReviewSource
	analyzer  *usecase.Analyzer
	repo      ports.ReportRepository
	opts      usecase.Options
	maxUpload int64
	logger    *slog.Logger
}

// NewServer builds the HTTP handlers.
func NewServer(deps Deps) *Server {
	maxUpload := deps.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		source:    deps.Source,
		analyzer:  deps.Analyzer,
		repo:      deps.Repository,
		opts:      deps.Options,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// Routes returns the chi router with logging, panic recovery and open CORS.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(requestLogFormatter{logger: s.logger}))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/", s.handleIndex)
	r.Post("/analyze", s.handleAnalyze)
	r.Get("/reports", s.handleListReports)
	r.Get("/reports/{id}", s.handleGetReport)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogFormatter routes chi access logs into slog.
type requestLogFormatter struct {
	logger *slog.Logger
}

func (f requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{logger: f.logger.With(
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"remote", r.RemoteAddr,
	)}
}

type requestLogEntry struct {
	logger *slog.Logger
}

func (e *requestLogEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	e.logger.Info("http request", "status", status, "bytes", bytes, "elapsed", elapsed)
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("http panic", "panic", v, "stack", string(stack))
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"ok": "API works"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, header, err := r.FormFile(uploadField)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	records, err := s.source.ReadReviews(r.Context(), file)
	if err != nil {
		if errors.Is(err, parser.ErrMissingContentColumn) {
			writeError(w, http.StatusBadRequest, "missing 'content' column!")
			return
		}
		s.warn("csv rejected", "file", header.Filename, "error", err)
		writeError(w, http.StatusBadRequest, "invalid CSV file")
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), header.Filename, records, s.opts)
	if err != nil {
		s.writeAnalysisError(w, header.Filename, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeAnalysisError(w http.ResponseWriter, filename string, err error) {
	switch {
	case errors.Is(err, usecase.ErrNoReviews):
		writeError(w, http.StatusBadRequest, "No reviews found in the CSV file.")
	case domain.IsGenerationError(err):
		s.warn("analysis failed", "file", filename, "error", err)
		writeError(w, http.StatusBadGateway, "analysis failed")
	default:
		s.logError("analysis failed", "file", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type reportSummary struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	ReviewCount int       `json:"review_count"`
	TopicCount  int       `json:"topic_count"`
	Summary     string    `json:"executive_summary"`
	CreatedAt   time.Time `json:"created_at"`
}

type reportDetail struct {
	ID            string               `json:"id"`
	Source        string               `json:"source"`
	ReviewCount   int                  `json:"review_count"`
	CreatedAt     time.Time            `json:"created_at"`
	TopicModeling domain.TopicModeling `json:"topic_modeling"`
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "report storage is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	reports, err := s.repo.List(r.Context(), limit)
	if err != nil {
		s.logError("list reports", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]reportSummary, 0, len(reports))
	for _, rep := range reports {
		out = append(out, reportSummary{
			ID:          rep.ID,
			Source:      rep.Source,
			ReviewCount: rep.ReviewCount,
			TopicCount:  len(rep.Report.TopicModeling.ConsolidatedTopics),
			Summary:     rep.Report.TopicModeling.ExecutiveSummary,
			CreatedAt:   rep.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.repo == nil {
		writeError(w, http.StatusServiceUnavailable, "report storage is not configured")
		return
	}

	rep, err := s.repo.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrReportNotFound) {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.logError("get report", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, reportDetail{
		ID:            rep.ID,
		Source:        rep.Source,
		ReviewCount:   rep.ReviewCount,
		CreatedAt:     rep.CreatedAt,
		TopicModeling: rep.Report.TopicModeling,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Server) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
