package domain

import (
	"errors"
	"fmt"
)

// GenerationRequest is a single plain-text generation call.
type GenerationRequest struct {
	System      string
	Prompt      string
	Temperature float64
}

// GenerationErrorKind classifies generation failures.
type GenerationErrorKind string

const (
	GenerationTransport   GenerationErrorKind = "transport"
	GenerationRateLimited GenerationErrorKind = "rate_limited"
	GenerationEmpty       GenerationErrorKind = "empty_response"
)

var (
	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("empty generation response")
	// ErrReportNotFound is returned by repositories for unknown report ids.
	ErrReportNotFound = errors.New("report not found")
)

// GenerationError wraps any failure of the external text-generation capability.
type GenerationError struct {
	Provider string
	Kind     GenerationErrorKind
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s (%s): %v", e.Kind, e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError builds a GenerationError of the given kind.
func NewGenerationError(provider string, kind GenerationErrorKind, err error) *GenerationError {
	return &GenerationError{Provider: provider, Kind: kind, Err: err}
}

// IsGenerationError reports whether err carries a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
