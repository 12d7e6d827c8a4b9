package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

// Middleware decorates a Generator.
type Middleware func(ports.Generator) ports.Generator

// Chain applies middlewares so that the first one is the outermost.
func Chain(g ports.Generator, mws ...Middleware) ports.Generator {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			g = mws[i](g)
		}
	}
	return g
}

// WithTimeout bounds every call with its own deadline.
func WithTimeout(d time.Duration) Middleware {
	return func(next ports.Generator) ports.Generator {
		if d <= 0 {
			return next
		}
		return &timeoutGenerator{next: next, timeout: d}
	}
}

type timeoutGenerator struct {
	next    ports.Generator
	timeout time.Duration
}

func (t *timeoutGenerator) Name() string { return t.next.Name() }

func (t *timeoutGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, req)
}

// WithRetry retries failed calls up to maxAttempts with exponential backoff
// starting at baseDelay. Empty responses are not retried; the context stops it.
func WithRetry(maxAttempts int, baseDelay time.Duration) Middleware {
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next ports.Generator) ports.Generator {
		if maxAttempts <= 1 {
			return next
		}
		return &retryingGenerator{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retryingGenerator struct {
	next ports.Generator
	max  int
	base time.Duration
}

func (r *retryingGenerator) Name() string { return r.next.Name() }

func (r *retryingGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		text, err := r.next.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		last = err

		var genErr *domain.GenerationError
		if errors.As(err, &genErr) && genErr.Kind == domain.GenerationEmpty {
			return "", err
		}
		if i == r.max-1 {
			break
		}

		timer := time.NewTimer(r.base * time.Duration(1<<i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", last
		case <-timer.C:
		}
	}
	return "", last
}

// WithLogging records every call at debug level.
func WithLogging(logger *slog.Logger) Middleware {
	return func(next ports.Generator) ports.Generator {
		if logger == nil {
			return next
		}
		return &loggingGenerator{next: next, logger: logger}
	}
}

type loggingGenerator struct {
	next   ports.Generator
	logger *slog.Logger
}

func (l *loggingGenerator) Name() string { return l.next.Name() }

func (l *loggingGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	started := time.Now()
	text, err := l.next.Generate(ctx, req)
	attrs := []any{
		"provider", l.next.Name(),
		"prompt_bytes", len(req.Prompt),
		"temperature", req.Temperature,
		"duration", time.Since(started),
	}
	if err != nil {
		l.logger.Debug("generation failed", append(attrs, "error", err)...)
		return "", err
	}
	l.logger.Debug("generation done", append(attrs, "response_bytes", len(text))...)
	return text, nil
}
