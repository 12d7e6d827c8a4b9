package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/domain"
	"ReviewInsights/internal/ports"
)

const defaultOpenAIModel = "gpt-4o"

// OpenAIGateway implements ports.Generator backed by the chat completions API.
type OpenAIGateway struct {
	client openai.Client
	model  string
}

var _ ports.Generator = (*OpenAIGateway)(nil)

// NewOpenAIGateway builds a gateway from configuration. SDK retries are disabled;
// retry policy belongs to the caller.
func NewOpenAIGateway(cfg config.GenerationConfig) (*OpenAIGateway, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key required")
	}

	opts := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		oaioption.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, oaioption.WithBaseURL(cfg.BaseURL))
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIGateway{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Name identifies the provider and model.
func (g *OpenAIGateway) Name() string {
	return "openai:" + g.model
}

// Generate sends the system instruction and prompt as one chat completion.
func (g *OpenAIGateway) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.Prompt),
		},
		Temperature: openai.Float(req.Temperature),
	}

	completion, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", classify(g.Name(), err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", domain.NewGenerationError(g.Name(), domain.GenerationEmpty, domain.ErrEmptyResponse)
	}

	return nonEmpty(g.Name(), completion.Choices[0].Message.Content)
}
