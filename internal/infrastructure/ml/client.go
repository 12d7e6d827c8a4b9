package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ReviewInsights/internal/config"
	"ReviewInsights/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Client talks to an external sentiment model served over HTTP.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.SentimentClassifier = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.MLConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoint: cfg.InferenceURL,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
	}
}

// Classify scores each text on a 1..5 star scale.
func (c *Client) Classify(ctx context.Context, texts []string) ([]int, error) {
	if len(texts) == 0 {
		return []int{}, nil
	}

	payload := map[string]any{"texts": texts}

	var resp struct {
		Scores []int `json:"scores"`
	}
	if err := c.post(ctx, "/predict", payload, &resp); err != nil {
		return nil, err
	}

	if len(resp.Scores) != len(texts) {
		return nil, fmt.Errorf("predict: got %d scores for %d texts", len(resp.Scores), len(texts))
	}
	for i, s := range resp.Scores {
		if s < 1 || s > 5 {
			return nil, fmt.Errorf("predict: score %d out of range at %d", s, i)
		}
	}

	return resp.Scores, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
