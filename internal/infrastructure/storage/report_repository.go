package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	reportsTable     = "analysis_reports"
	defaultListLimit = 20
	// Fixed width so that text ordering matches time ordering.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var reportColumns = []string{"id", "source", "review_count", "topic_count", "summary", "payload", "created_at"}

// ReportRepository persists analysis reports into Postgres or SQLite.
type ReportRepository struct {
	db     *sql.DB
	driver string
	sb     sq.StatementBuilderType
}

var _ ports.ReportRepository = (*ReportRepository)(nil)

// Open connects to the configured database and creates the schema.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*ReportRepository, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	var sqlDriver string
	switch driver {
	case DriverPostgres, "pgx":
		driver, sqlDriver = DriverPostgres, "pgx"
	case DriverSQLite, "":
		driver, sqlDriver = DriverSQLite, "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(sqlDriver, strings.TrimSpace(cfg.DSN))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	repo := NewReportRepository(db, driver)
	if err := repo.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// NewReportRepository wires a sql.DB implementation.
func NewReportRepository(db *sql.DB, driver string) *ReportRepository {
	sb := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	if driver == DriverPostgres {
		sb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return &ReportRepository{db: db, driver: driver, sb: sb}
}

// Migrate creates the reports table when it does not exist.
func (r *ReportRepository) Migrate(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS ` + reportsTable + ` (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	review_count INTEGER NOT NULL,
	topic_count INTEGER NOT NULL,
	summary TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
)`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create %s: %w", reportsTable, err)
	}

	index := `CREATE INDEX IF NOT EXISTS idx_` + reportsTable + `_created ON ` + reportsTable + ` (created_at)`
	if _, err := r.db.ExecContext(ctx, index); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *ReportRepository) Close() error {
	return r.db.Close()
}

// Save inserts a report snapshot.
func (r *ReportRepository) Save(ctx context.Context, report domain.StoredReport) error {
	payload, err := json.Marshal(report.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	query, args, err := r.sb.Insert(reportsTable).
		Columns(reportColumns...).
		Values(
			report.ID,
			report.Source,
			report.ReviewCount,
			len(report.Report.TopicModeling.ConsolidatedTopics),
			report.Report.TopicModeling.ExecutiveSummary,
			string(payload),
			report.CreatedAt.UTC().Format(timeLayout),
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get loads one report by id.
func (r *ReportRepository) Get(ctx context.Context, id string) (domain.StoredReport, error) {
	query, args, err := r.sb.Select(reportColumns...).
		From(reportsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return domain.StoredReport{}, fmt.Errorf("build select: %w", err)
	}

	report, err := scanReport(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredReport{}, domain.ErrReportNotFound
	}
	if err != nil {
		return domain.StoredReport{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return report, nil
}

// List returns the most recent reports first.
func (r *ReportRepository) List(ctx context.Context, limit int) ([]domain.StoredReport, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query, args, err := r.sb.Select(reportColumns...).
		From(reportsTable).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	result := make([]domain.StoredReport, 0, limit)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan report: %w", err)
		}
		result = append(result, report)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (domain.StoredReport, error) {
	var (
		report     domain.StoredReport
		topicCount int
		summary    string
		payload    string
		createdAt  string
	)
	if err := row.Scan(&report.ID, &report.Source, &report.ReviewCount, &topicCount, &summary, &payload, &createdAt); err != nil {
		return domain.StoredReport{}, err
	}

	if err := json.Unmarshal([]byte(payload), &report.Report); err != nil {
		return domain.StoredReport{}, fmt.Errorf("decode payload: %w", err)
	}

	created, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return domain.StoredReport{}, fmt.Errorf("parse created_at: %w", err)
	}
	report.CreatedAt = created

	return report, nil
}
