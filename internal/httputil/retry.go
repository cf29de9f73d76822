// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the upstream clients.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// RetryBaseDelay controls the base duration for exponential backoff.
// Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// maxRetryAfter caps how long a server-supplied Retry-After may hold us.
const maxRetryAfter = 60 * time.Second

const defaultMaxRetries = 3

// statusOverloaded is returned by Anthropic when the API is overloaded.
const statusOverloaded = 529

// Policy retries upstream requests that were throttled or hit a
// temporarily unavailable provider.
type Policy struct {
	// Client sends the requests. Nil means http.DefaultClient.
	Client *http.Client

	// MaxRetries bounds the number of retries after the first attempt.
	// Zero or negative means the default (3).
	MaxRetries int

	// Logger receives one warning per retry. Nil disables logging.
	Logger *zap.Logger
}

// Retryable reports whether a response status is worth another attempt:
// 429 Too Many Requests, 503 Service Unavailable and 529 Overloaded.
func Retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusServiceUnavailable, statusOverloaded:
		return true
	}
	return false
}

// Do executes req and retries retryable statuses with exponential backoff
// starting at RetryBaseDelay and doubling each attempt. A Retry-After header
// expressed in seconds replaces the computed delay.
//
// Request bodies are replayed through req.GetBody, which
// http.NewRequestWithContext sets for bytes, strings and bytes.Buffer
// readers. On each retry the previous response body is drained and closed.
// If ctx is cancelled during a backoff wait Do returns ctx.Err(). After
// exhausting retries the last response is returned so the caller can report
// its status and body.
func (p Policy) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	maxRetries := p.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		attemptReq := req.Clone(ctx)
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewinding request body: %w", err)
			}
			attemptReq.Body = body
		}

		resp, err := client.Do(attemptReq)
		if err != nil {
			return nil, err
		}

		if !Retryable(resp.StatusCode) || attempt >= maxRetries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		backoff := backoffFor(attempt, resp.Header.Get("Retry-After"))
		logger.Warn("upstream throttled, retrying",
			zap.String("host", req.URL.Host),
			zap.Int("status", resp.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// backoffFor returns the wait before retry number attempt+1.
func backoffFor(attempt int, retryAfter string) time.Duration {
	if secs, err := strconv.Atoi(retryAfter); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		return d
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
