// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/ai-orchestrator/internal/httputil"
)

const (
	defaultGrokBaseURL = "https://api.x.ai/v1"
	defaultGrokModel   = "grok-4-latest"

	analystSystemPrompt = "You are a helpful analyst. Provide clear, accurate analysis."
)

// GrokClient calls the xAI chat-completions API. It is an alternative
// analyzer to AnthropicClient.
type GrokClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	UserAgent string
	Policy    httputil.Policy
}

// Name returns the provider identifier.
func (c *GrokClient) Name() string { return "grok" }

// Configured reports whether an API key is set.
func (c *GrokClient) Configured() bool { return c.APIKey != "" }

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Analyze sends prompt (prefixed with priorContext when non-empty) behind
// the analyst system prompt and returns the first choice's content, or ""
// when the reply has no choices.
func (c *GrokClient) Analyze(ctx context.Context, prompt, priorContext string) (string, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = defaultGrokBaseURL
	}
	model := c.Model
	if model == "" {
		model = defaultGrokModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := 0.0

	ep := endpoint{
		provider:  c.Name(),
		url:       strings.TrimRight(baseURL, "/") + "/chat/completions",
		userAgent: c.UserAgent,
		headers:   map[string]string{"Authorization": "Bearer " + c.APIKey},
		policy:    c.Policy,
	}

	body, err := ep.postJSON(ctx, chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: analystSystemPrompt},
			{Role: "user", Content: withContext(prompt, priorContext)},
		},
		MaxTokens:   maxTokens,
		Temperature: &temperature,
	})
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &UpstreamError{Provider: c.Name(), StatusCode: 200, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
