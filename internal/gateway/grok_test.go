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
)

func TestGrokAnalyzeRequest(t *testing.T) {
	var capturedReq *http.Request
	var captured chatRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedReq = r
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"id":"x","choices":[{"message":{"role":"assistant","content":"grok says"},"finish_reason":"stop"}]}`)
	}))
	defer ts.Close()

	c := &GrokClient{BaseURL: ts.URL, APIKey: "xai-test", Policy: testPolicy(t, ts)}
	got, err := c.Analyze(context.Background(), "Explain fusion", "Plasma physics")
	require.NoError(t, err)
	assert.Equal(t, "grok says", got)

	assert.Equal(t, "/chat/completions", capturedReq.URL.Path)
	assert.Equal(t, "Bearer xai-test", capturedReq.Header.Get("Authorization"))
	assert.Equal(t, defaultGrokModel, captured.Model)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens)
	require.NotNil(t, captured.Temperature)
	assert.Equal(t, 0.0, *captured.Temperature)
	assert.False(t, captured.Stream)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, analystSystemPrompt, captured.Messages[0].Content)
	assert.Equal(t, "Context: Plasma physics\n\nTask: Explain fusion", captured.Messages[1].Content)
}

func TestGrokAnalyzeNoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices":[]}`)
	}))
	defer ts.Close()

	c := &GrokClient{BaseURL: ts.URL, APIKey: "k", Policy: testPolicy(t, ts)}
	got, err := c.Analyze(context.Background(), "p", "")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestGrokAnalyzeError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad model"}}`)
	}))
	defer ts.Close()

	c := &GrokClient{BaseURL: ts.URL, APIKey: "k", Policy: testPolicy(t, ts)}
	_, err := c.Analyze(context.Background(), "p", "")

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusBadRequest, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "bad model")
}
