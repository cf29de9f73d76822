// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics holds the Prometheus collectors for research runs. Each
// Metrics value owns a private registry so tests and multiple servers in
// one process never collide on the default registerer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes.
const (
	OutcomeHit     = "hit"
	OutcomeMiss    = "miss"
	OutcomeError   = "error"
	OutcomeInvalid = "invalid"
)

// Upstream legs.
const (
	LegSearch   = "search"
	LegAnalysis = "analysis"
)

// Metrics groups the orchestrator's collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Requests          *prometheus.CounterVec
	LegFailures       *prometheus.CounterVec
	SynthesisFailures prometheus.Counter
	Duration          *prometheus.HistogramVec
	CacheEntries      prometheus.Gauge
}

// New registers the collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_orchestrator_research_requests_total",
				Help: "Research requests by outcome",
			},
			[]string{"outcome"},
		),
		LegFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ai_orchestrator_upstream_leg_failures_total",
				Help: "Upstream leg failures recovered as empty placeholders",
			},
			[]string{"leg"},
		),
		SynthesisFailures: f.NewCounter(
			prometheus.CounterOpts{
				Name: "ai_orchestrator_synthesis_failures_total",
				Help: "Synthesis calls that failed the whole research run",
			},
		),
		Duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ai_orchestrator_research_duration_seconds",
				Help:    "Research run duration in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 1, 5, 10, 30, 60, 120},
			},
			[]string{"outcome"},
		),
		CacheEntries: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "ai_orchestrator_cache_entries",
				Help: "Entries currently held by the research cache",
			},
		),
	}
}

// Registry exposes the private registry for tests and custom handlers.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest counts one research request and records its duration.
func (m *Metrics) ObserveRequest(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	m.Duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// LegFailed counts a failed upstream leg.
func (m *Metrics) LegFailed(leg string) {
	if m == nil {
		return
	}
	m.LegFailures.WithLabelValues(leg).Inc()
}

// SynthesisFailed counts a failed synthesis call.
func (m *Metrics) SynthesisFailed() {
	if m == nil {
		return
	}
	m.SynthesisFailures.Inc()
}

// SetCacheEntries records the current cache size.
func (m *Metrics) SetCacheEntries(n int) {
	if m == nil {
		return
	}
	m.CacheEntries.Set(float64(n))
}
