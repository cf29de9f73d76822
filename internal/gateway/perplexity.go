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
	defaultPerplexityBaseURL = "https://api.perplexity.ai"
	defaultPerplexityModel   = "llama-3.1-sonar-small-128k-online"

	searchSystemPrompt = "You are a helpful research assistant. Provide comprehensive, factual information with sources."
)

// SearchPayload is the parsed view of a search provider response. Raw is
// the whole decoded body, kept opaque for callers that want to expose it;
// Text and Citations are the only fields the orchestrator relies on.
type SearchPayload struct {
	Raw       map[string]any
	Text      string
	Citations []string
}

// PerplexityClient calls a Perplexity-compatible chat-completions endpoint
// whose answers are grounded in live web results.
type PerplexityClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	UserAgent string
	Policy    httputil.Policy
}

// Name returns the provider identifier.
func (c *PerplexityClient) Name() string { return "perplexity" }

// Configured reports whether an API key is set.
func (c *PerplexityClient) Configured() bool { return c.APIKey != "" }

// chatRequest is the request body shared by the OpenAI-style chat
// completion APIs (Perplexity, xAI).
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Search sends query to the provider and parses the answer and citations.
func (c *PerplexityClient) Search(ctx context.Context, query string) (SearchPayload, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = defaultPerplexityBaseURL
	}
	model := c.Model
	if model == "" {
		model = defaultPerplexityModel
	}

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
			{Role: "system", Content: searchSystemPrompt},
			{Role: "user", Content: query},
		},
	})
	if err != nil {
		return SearchPayload{}, err
	}

	payload, err := ParseSearchPayload(body)
	if err != nil {
		return SearchPayload{}, &UpstreamError{Provider: c.Name(), StatusCode: 200, Err: err}
	}
	return payload, nil
}

// ParseSearchPayload decodes a chat-completions body into a SearchPayload.
// The answer text is choices[0].message.content; citations are taken only
// when the citations field is an array, keeping its string elements. A
// body that is not a JSON object is an error.
func ParseSearchPayload(body []byte) (SearchPayload, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return SearchPayload{}, fmt.Errorf("parsing search response: %w", err)
	}
	if raw == nil {
		return SearchPayload{}, fmt.Errorf("parsing search response: body is null")
	}
	return SearchPayload{
		Raw:       raw,
		Text:      answerText(raw),
		Citations: citations(raw),
	}, nil
}

func answerText(raw map[string]any) string {
	choices, _ := raw["choices"].([]any)
	if len(choices) == 0 {
		return ""
	}
	first, _ := choices[0].(map[string]any)
	msg, _ := first["message"].(map[string]any)
	text, _ := msg["content"].(string)
	return text
}

func citations(raw map[string]any) []string {
	out := []string{}
	list, ok := raw["citations"].([]any)
	if !ok {
		return out
	}
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
