package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiGateway is a thin wrapper around the official genai client.
type GeminiGateway struct {
	cli   *genai.Client
	model string
}

var _ ports.Generator = (*GeminiGateway)(nil)

// NewGeminiGateway builds a gateway bound to the Gemini API backend.
func NewGeminiGateway(ctx context.Context, cfg config.GenerationConfig) (*GeminiGateway, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key required")
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	cli, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiGateway{cli: cli, model: model}, nil
}

// Name identifies the provider and model.
func (g *GeminiGateway) Name() string {
	return "gemini:" + g.model
}

// Generate sends the prompt with the system instruction set on the request config.
func (g *GeminiGateway) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	temperature := float32(req.Temperature)
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		genai.Text(req.Prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
			Temperature:       &temperature,
		},
	)
	if err != nil {
		return "", classify(g.Name(), err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", domain.NewGenerationError(g.Name(), domain.GenerationEmpty, domain.ErrEmptyResponse)
	}

	return nonEmpty(g.Name(), resp.Text())
}
