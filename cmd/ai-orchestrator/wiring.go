// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"go.uber.org/zap"

	"github.com/pdiddy/ai-orchestrator/internal/archive"
	"github.com/pdiddy/ai-orchestrator/internal/cache"
	"github.com/pdiddy/ai-orchestrator/internal/gateway"
	"github.com/pdiddy/ai-orchestrator/internal/metrics"
	"github.com/pdiddy/ai-orchestrator/internal/research"
	"github.com/pdiddy/ai-orchestrator/internal/server"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// app is the assembled set of components shared by serve and research.
type app struct {
	orchestrator *research.Orchestrator
	metrics      *metrics.Metrics
	providers    server.Providers
	archive      *archive.Store
}

// Close releases the archive, if one was opened.
func (a *app) Close() error {
	if a.archive == nil {
		return nil
	}
	return a.archive.Close()
}

// newApp builds the gateway clients, cache, metrics, and optional archive
// from cfg and wires them into an orchestrator.
func newApp(cfg types.OrchestratorConfig, logger *zap.Logger) (*app, error) {
	searcher := gateway.NewSearcher(cfg.Search, cfg.HTTP, logger)
	analyzer, err := gateway.NewAnalyzer(cfg.Analyzer, cfg.HTTP, logger)
	if err != nil {
		return nil, err
	}
	if !searcher.Configured() {
		logger.Warn("search provider has no API key; search legs will fail", zap.String("provider", searcher.Name()))
	}
	if !analyzer.Configured() {
		logger.Warn("analysis provider has no API key; research will fail", zap.String("provider", analyzer.Name()))
	}

	a := &app{
		metrics:   metrics.New(),
		providers: server.Providers{Search: searcher, Analyzer: analyzer},
	}

	opts := []research.Option{
		research.WithLogger(logger.Named("research")),
		research.WithMetrics(a.metrics),
	}
	if cfg.Archive.Path != "" {
		store, err := archive.NewStore(cfg.Archive)
		if err != nil {
			return nil, err
		}
		a.archive = store
		opts = append(opts, research.WithRecorder(store))
		logger.Info("archiving results", zap.String("path", cfg.Archive.Path))
	}

	a.orchestrator = research.New(searcher, analyzer, cache.New(cfg.Cache.TTL), opts...)
	return a, nil
}
