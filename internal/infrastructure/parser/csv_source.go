package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

const (
	contentColumn = "content"
	atColumn      = "at"
)

// ErrMissingContentColumn is returned when the header has no content column.
var ErrMissingContentColumn = errors.New("missing 'content' column")

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// CSVSource reads uploaded review exports with a content column and an
// optional at timestamp column.
type CSVSource struct {
	logger *slog.Logger
}

var _ ports.ReviewSource = (*CSVSource)(nil)

// NewCSVSource builds a CSV review reader.
func NewCSVSource(logger *slog.Logger) *CSVSource {
	return &CSVSource{logger: logger}
}

// ReadReviews parses every row, sanitizing content and skipping rows whose
// content is empty after sanitization.
func (s *CSVSource) ReadReviews(ctx context.Context, r io.Reader) ([]domain.ReviewRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingContentColumn
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	contentIdx, atIdx := columnIndex(header, contentColumn), columnIndex(header, atColumn)
	if contentIdx < 0 {
		return nil, ErrMissingContentColumn
	}

	var (
		records  []domain.ReviewRecord
		skipped  int
		badDates int
		line     = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		if line%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		if contentIdx >= len(row) {
			skipped++
			continue
		}
		content := SanitizeText(row[contentIdx])
		if content == "" {
			skipped++
			continue
		}

		rec := domain.ReviewRecord{Content: content}
		if atIdx >= 0 && atIdx < len(row) && strings.TrimSpace(row[atIdx]) != "" {
			if at, ok := parseTime(row[atIdx]); ok {
				rec.At, rec.HasAt = at, true
			} else {
				badDates++
			}
		}
		records = append(records, rec)
	}

	s.debug("csv parsed", "reviews", len(records), "skipped", skipped, "bad_dates", badDates)
	return records, nil
}

func columnIndex(header []string, name string) int {
	for i, col := range header {
		col = strings.TrimPrefix(col, "\ufeff")
		if strings.EqualFold(strings.TrimSpace(col), name) {
			return i
		}
	}
	return -1
}

func parseTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (s *CSVSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
