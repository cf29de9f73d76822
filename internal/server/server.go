// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the orchestrator over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/ai-orchestrator/internal/gateway"
	"github.com/pdiddy/ai-orchestrator/internal/research"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

const (
	serviceName  = "ai-orchestrator"
	maxBodyBytes = 1 << 20
)

// Researcher is the orchestrator surface the HTTP layer needs.
type Researcher interface {
	Conduct(ctx context.Context, req types.ResearchRequest) (types.ResearchResult, error)
	ClearExpiredCache() int
	CacheStats() types.CacheStats
}

// Providers are reported by /health. Either may be nil.
type Providers struct {
	Search   gateway.Provider
	Analyzer gateway.Provider
}

// Server holds the HTTP handlers.
type Server struct {
	research  Researcher
	providers Providers
	metrics   http.Handler
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a Server. metricsHandler may be nil, in which case /metrics
// is not served.
func New(r Researcher, providers Providers, metricsHandler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		research:  r,
		providers: providers,
		metrics:   metricsHandler,
		logger:    logger,
		now:       time.Now,
	}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /research", s.handleResearch)
	mux.HandleFunc("GET /cache/stats", s.handleCacheStats)
	mux.HandleFunc("POST /cache/clear", s.handleCacheClear)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}
	mux.HandleFunc("/", s.handleNotFound)
	return s.logRequests(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": s.now().UTC().Format(time.RFC3339Nano),
		"service":   serviceName,
		"providers": map[string]bool{
			"search":   configured(s.providers.Search),
			"analyzer": configured(s.providers.Analyzer),
		},
	})
}

func configured(p gateway.Provider) bool {
	return p != nil && p.Configured()
}

// researchBody accepts any JSON type for its fields so a non-string topic
// is reported as a validation failure rather than a decode failure.
type researchBody struct {
	Topic any `json:"topic"`
	Depth any `json:"depth"`
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	var body researchBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request", fmt.Sprintf("Request body must be a JSON object: %v", err))
		return
	}

	topic, ok := body.Topic.(string)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "Invalid request", "Topic is required and must be a string")
		return
	}
	var depth types.Depth
	switch d := body.Depth.(type) {
	case nil:
	case string:
		depth = types.Depth(d)
	default:
		s.writeError(w, http.StatusBadRequest, "Invalid request", "Depth must be a string")
		return
	}

	result, err := s.research.Conduct(r.Context(), types.ResearchRequest{Topic: topic, Depth: depth})
	if err != nil {
		var vErr *research.ValidationError
		if errors.As(err, &vErr) {
			s.writeError(w, http.StatusBadRequest, "Invalid request", vErr.Message)
			return
		}
		s.logger.Error("research failed", zap.String("topic", topic), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Internal server error", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": result})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": s.research.CacheStats()})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, _ *http.Request) {
	removed := s.research.ClearExpiredCache()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Expired cache entries cleared",
		"removed": removed,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, http.StatusNotFound, "Not found", fmt.Sprintf("Cannot %s %s", r.Method, r.URL.Path))
}

func (s *Server) writeError(w http.ResponseWriter, status int, title, message string) {
	s.writeJSON(w, status, map[string]string{"error": title, "message": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
