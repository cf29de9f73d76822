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
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-sonnet-20241022"
	anthropicVersion        = "2023-06-01"

	defaultMaxTokens = 4096
)

// AnthropicClient calls the Claude Messages API for single-shot analysis.
type AnthropicClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	UserAgent string
	Policy    httputil.Policy
}

// Name returns the provider identifier.
func (c *AnthropicClient) Name() string { return "anthropic" }

// Configured reports whether an API key is set.
func (c *AnthropicClient) Configured() bool { return c.APIKey != "" }

// messagesRequest is the request body for the Claude Messages API.
type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

// messagesResponse is the response body from the Claude Messages API.
type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

// contentBlock is a content block in the Claude API response.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Analyze sends prompt (prefixed with priorContext when non-empty) and
// returns the first text block of the reply, or "" when there is none.
func (c *AnthropicClient) Analyze(ctx context.Context, prompt, priorContext string) (string, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	model := c.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	ep := endpoint{
		provider:  c.Name(),
		url:       strings.TrimRight(baseURL, "/") + "/v1/messages",
		userAgent: c.UserAgent,
		headers: map[string]string{
			"x-api-key":         c.APIKey,
			"anthropic-version": anthropicVersion,
		},
		policy: c.Policy,
	}

	body, err := ep.postJSON(ctx, messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []chatMessage{{Role: "user", Content: withContext(prompt, priorContext)}},
	})
	if err != nil {
		return "", err
	}

	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &UpstreamError{Provider: c.Name(), StatusCode: 200, Err: fmt.Errorf("decoding response: %w", err)}
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
