package llm

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
	"google.golang.org/genai"

	"ReviewInsights/internal/domain"
)

// classify wraps a provider error into a GenerationError, flagging HTTP 429.
func classify(provider string, err error) error {
	if domain.IsGenerationError(err) {
		return err
	}
	kind := domain.GenerationTransport
	if statusOf(err) == http.StatusTooManyRequests {
		kind = domain.GenerationRateLimited
	}
	return domain.NewGenerationError(provider, kind, err)
}

func statusOf(err error) int {
	var oaiErr *openai.Error
	if errors.As(err, &oaiErr) {
		return oaiErr.StatusCode
	}
	var antErr *anthropic.Error
	if errors.As(err, &antErr) {
		return antErr.StatusCode
	}
	var gemErr genai.APIError
	if errors.As(err, &gemErr) {
		return gemErr.Code
	}
	var gemPtr *genai.APIError
	if errors.As(err, &gemPtr) && gemPtr != nil {
		return gemPtr.Code
	}
	return 0
}

func nonEmpty(provider, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", domain.NewGenerationError(provider, domain.GenerationEmpty, domain.ErrEmptyResponse)
	}
	return text, nil
}
