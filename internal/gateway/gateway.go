// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package gateway issues the two upstream calls a research run depends on:
// a web-grounded search that returns an answer with citations, and a
// single-shot text analysis. Each call is stateless; failures are reported
// as *UpstreamError so the orchestrator can isolate one leg from the other.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/ai-orchestrator/internal/httputil"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 8 << 20

// Searcher performs a web-grounded search for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (SearchPayload, error)
}

// Analyzer runs a single text-completion over a prompt. A non-empty
// priorContext is sent ahead of the prompt.
type Analyzer interface {
	Analyze(ctx context.Context, prompt, priorContext string) (string, error)
}

// Provider describes an upstream client for health reporting.
type Provider interface {
	Name() string
	Configured() bool
}

// UpstreamError reports a failed upstream call: a transport failure, a
// non-success HTTP status, or a response that could not be decoded.
type UpstreamError struct {
	// Provider names the upstream service (e.g. "perplexity").
	Provider string

	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int

	// Body is the response body, possibly truncated.
	Body string

	// Err is the underlying cause, if any.
	Err error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Err != nil:
		return fmt.Sprintf("%s API response (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s API returned %d: %s", e.Provider, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s API request: %v", e.Provider, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// endpoint is the shared plumbing behind every provider client: it posts
// a JSON body through the retry policy and returns the raw success body.
type endpoint struct {
	provider  string
	url       string
	userAgent string
	headers   map[string]string
	policy    httputil.Policy
}

func (e endpoint) postJSON(ctx context.Context, payload any) ([]byte, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling %s request: %w", e.provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", e.provider, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}
	for k, v := range e.headers {
		req.Header.Set(k, v)
	}

	resp, err := e.policy.Do(ctx, req)
	if err != nil {
		return nil, &UpstreamError{Provider: e.provider, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &UpstreamError{Provider: e.provider, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Provider: e.provider, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// newPolicy builds the retry policy shared by every client.
func newPolicy(cfg types.HTTPConfig, logger *zap.Logger) httputil.Policy {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return httputil.Policy{
		Client:     &http.Client{Timeout: timeout},
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	}
}

// NewSearcher builds the search client from configuration.
func NewSearcher(cfg types.SearchConfig, httpCfg types.HTTPConfig, logger *zap.Logger) *PerplexityClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerplexityClient{
		BaseURL:   cfg.BaseURL,
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		UserAgent: httpCfg.UserAgent,
		Policy:    newPolicy(httpCfg, logger.Named("perplexity")),
	}
}

// AnalyzerClient is an Analyzer that can also report its health.
type AnalyzerClient interface {
	Analyzer
	Provider
}

// NewAnalyzer builds the analysis client selected by cfg.Provider. An
// empty provider selects Anthropic.
func NewAnalyzer(cfg types.AnalyzerConfig, httpCfg types.HTTPConfig, logger *zap.Logger) (AnalyzerClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "", types.AnalyzerAnthropic:
		return &AnthropicClient{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			UserAgent: httpCfg.UserAgent,
			Policy:    newPolicy(httpCfg, logger.Named("anthropic")),
		}, nil
	case types.AnalyzerGrok:
		return &GrokClient{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
			UserAgent: httpCfg.UserAgent,
			Policy:    newPolicy(httpCfg, logger.Named("grok")),
		}, nil
	default:
		return nil, fmt.Errorf("unknown analyzer provider %q: expected anthropic or grok", cfg.Provider)
	}
}

// withContext prepends priorContext to prompt in the form the analysis
// providers expect.
func withContext(prompt, priorContext string) string {
	if priorContext == "" {
		return prompt
	}
	return fmt.Sprintf("Context: %s\n\nTask: %s", priorContext, prompt)
}
