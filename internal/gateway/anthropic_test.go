// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

func TestAnthropicAnalyzeRequest(t *testing.T) {
	var capturedReq *http.Request
	var captured messagesRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"analysis"}]}`)
	}))
	defer ts.Close()

	c := &AnthropicClient{BaseURL: ts.URL, APIKey: "sk-ant-test", Policy: testPolicy(t, ts)}
	got, err := c.Analyze(context.Background(), "Summarize fusion", "")
	require.NoError(t, err)
	assert.Equal(t, "analysis", got)

	assert.Equal(t, "/v1/messages", capturedReq.URL.Path)
	assert.Equal(t, "sk-ant-test", capturedReq.Header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, capturedReq.Header.Get("anthropic-version"))

	assert.Equal(t, defaultAnthropicModel, captured.Model)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "Summarize fusion", captured.Messages[0].Content)
}

func TestAnthropicAnalyzeWithContext(t *testing.T) {
	var captured messagesRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"ok"}]}`)
	}))
	defer ts.Close()

	c := &AnthropicClient{BaseURL: ts.URL, APIKey: "k", Model: "claude-test", MaxTokens: 512, Policy: testPolicy(t, ts)}
	_, err := c.Analyze(context.Background(), "Write a summary", "Tokamaks confine plasma.")
	require.NoError(t, err)

	assert.Equal(t, "claude-test", captured.Model)
	assert.Equal(t, 512, captured.MaxTokens)
	assert.Equal(t, "Context: Tokamaks confine plasma.\n\nTask: Write a summary", captured.Messages[0].Content)
}

func TestAnthropicAnalyzeResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantErr bool
	}{
		{
			name:   "first text block wins",
			status: http.StatusOK,
			body:   `{"content":[{"type":"tool_use","text":""},{"type":"text","text":"first"},{"type":"text","text":"second"}]}`,
			want:   "first",
		},
		{
			name:   "no text block returns empty",
			status: http.StatusOK,
			body:   `{"content":[{"type":"tool_use"}]}`,
			want:   "",
		},
		{
			name:   "empty content returns empty",
			status: http.StatusOK,
			body:   `{"content":[]}`,
			want:   "",
		},
		{name: "malformed body", status: http.StatusOK, body: `{"content":`, wantErr: true},
		{name: "server error", status: http.StatusInternalServerError, body: `overloaded`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()

			c := &AnthropicClient{BaseURL: ts.URL, APIKey: "k", Policy: testPolicy(t, ts)}
			got, err := c.Analyze(context.Background(), "p", "")
			if tt.wantErr {
				var upErr *UpstreamError
				require.True(t, errors.As(err, &upErr))
				assert.Equal(t, "anthropic", upErr.Provider)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAnalyzerSelectsProvider(t *testing.T) {
	tests := []struct {
		provider types.AnalyzerProvider
		wantName string
		wantErr  bool
	}{
		{provider: "", wantName: "anthropic"},
		{provider: types.AnalyzerAnthropic, wantName: "anthropic"},
		{provider: types.AnalyzerGrok, wantName: "grok"},
		{provider: "openai", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			a, err := NewAnalyzer(types.AnalyzerConfig{Provider: tt.provider, APIKey: "k"}, types.HTTPConfig{}, zaptest.NewLogger(t))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown analyzer provider")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, a.Name())
			assert.True(t, a.Configured())
		})
	}
}

func TestNewSearcherConfigured(t *testing.T) {
	s := NewSearcher(types.SearchConfig{}, types.HTTPConfig{}, nil)
	assert.False(t, s.Configured())
	assert.Equal(t, "perplexity", s.Name())
}
