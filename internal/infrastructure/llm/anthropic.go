package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	antoption "github.com/anthropics/anthropic-sdk-go/option"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5-20250929"
	anthropicMaxTokens    = 4096
)

// AnthropicGateway implements ports.Generator on the Messages API.
type AnthropicGateway struct {
	client anthropic.Client
	model  string
}

var _ ports.Generator = (*AnthropicGateway)(nil)

// NewAnthropicGateway builds a gateway from configuration.
func NewAnthropicGateway(cfg config.GenerationConfig) (*AnthropicGateway, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic: api key required")
	}

	opts := []antoption.RequestOption{
		antoption.WithAPIKey(apiKey),
		antoption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, antoption.WithBaseURL(cfg.BaseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultAnthropicModel
	}

	return &AnthropicGateway{
		client: anthropic.NewClient(opts...),
		model:  model,
	}, nil
}

// Name identifies the provider and model.
func (g *AnthropicGateway) Name() string {
	return "anthropic:" + g.model
}

// Generate returns the first text block of the reply.
func (g *AnthropicGateway) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	message, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: req.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Prompt)),
		},
		Temperature: anthropic.Float(req.Temperature),
	})
	if err != nil {
		return "", classify(g.Name(), err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return nonEmpty(g.Name(), block.Text)
		}
	}
	return "", domain.NewGenerationError(g.Name(), domain.GenerationEmpty, domain.ErrEmptyResponse)
}
