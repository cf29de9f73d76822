// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research conducts research runs. A run asks a web-grounded
// search provider and an analysis provider about the same topic at the
// same time, tolerates either of them failing, and then asks the analyzer
// to merge what came back into one narrative. Finished results are
// memoized per normalized (topic, depth) for the cache TTL.
//
// Only the synthesis step is fatal. A run whose search and analysis legs
// both fail still succeeds, built from "unavailable" placeholders.
package research

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pdiddy/ai-orchestrator/internal/cache"
	"github.com/pdiddy/ai-orchestrator/internal/gateway"
	"github.com/pdiddy/ai-orchestrator/internal/metrics"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// Recorder receives every freshly built result. The archive implements it.
type Recorder interface {
	Record(ctx context.Context, cacheKey string, result types.ResearchResult) error
}

// Orchestrator owns the result cache and the fan-out policy.
type Orchestrator struct {
	searcher gateway.Searcher
	analyzer gateway.Analyzer
	cache    cache.Store

	logger   *zap.Logger
	metrics  *metrics.Metrics
	recorder Recorder
	now      func() time.Time
	newID    func() string

	inflight singleflight.Group
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the collectors updated on every run.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithRecorder sets a Recorder that is handed each freshly built result.
// Recorder failures are logged and never fail the run.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithClock replaces time.Now for result timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New builds an Orchestrator. A nil store gets a TTLCache with the
// default TTL.
func New(searcher gateway.Searcher, analyzer gateway.Analyzer, store cache.Store, opts ...Option) *Orchestrator {
	if store == nil {
		store = cache.New(cache.DefaultTTL)
	}
	o := &Orchestrator{
		searcher: searcher,
		analyzer: analyzer,
		cache:    store,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// flight is what one single-flight build hands to every waiting caller.
type flight struct {
	result    types.ResearchResult
	fromCache bool
}

// Conduct returns the research result for req, from the cache when a live
// entry exists and otherwise by running a fresh build. Concurrent calls
// for the same cache key share one build. The shared build is detached
// from every caller's cancellation, so one caller going away never fails
// the others. Each caller gets its own copy of the result.
//
// The returned error is a *ValidationError for a malformed request, an
// *OrchestrationError when synthesis fails, or ctx.Err() when ctx ends
// before the build finishes. Upstream leg failures are never returned.
func (o *Orchestrator) Conduct(ctx context.Context, req types.ResearchRequest) (types.ResearchResult, error) {
	start := o.now()

	if err := Validate(req); err != nil {
		o.metrics.ObserveRequest(metrics.OutcomeInvalid, o.now().Sub(start))
		return types.ResearchResult{}, err
	}
	req = req.Normalize()
	key := req.CacheKey()

	if hit, ok := o.cache.Get(key); ok {
		o.logger.Info("cache hit", zap.String("topic", req.Topic), zap.String("key", key))
		hit.Cached = true
		o.metrics.ObserveRequest(metrics.OutcomeHit, o.now().Sub(start))
		return hit, nil
	}
	// Get drops an expired entry on the way to a miss.
	o.metrics.SetCacheEntries(o.cache.Len())

	buildCtx := context.WithoutCancel(ctx)
	ch := o.inflight.DoChan(key, func() (any, error) {
		// A build for this key may have finished between the lookup above
		// and joining the flight.
		if hit, ok := o.cache.Get(key); ok {
			return flight{result: hit, fromCache: true}, nil
		}
		result, err := o.build(buildCtx, req, key)
		if err != nil {
			return nil, err
		}
		return flight{result: result}, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		o.logger.Debug("caller left in-flight build", zap.String("key", key), zap.Error(ctx.Err()))
		o.metrics.ObserveRequest(metrics.OutcomeError, o.now().Sub(start))
		return types.ResearchResult{}, ctx.Err()
	}
	if res.Err != nil {
		o.metrics.ObserveRequest(metrics.OutcomeError, o.now().Sub(start))
		return types.ResearchResult{}, res.Err
	}

	f := res.Val.(flight)
	result := f.result.Clone()
	if f.fromCache {
		result.Cached = true
		o.metrics.ObserveRequest(metrics.OutcomeHit, o.now().Sub(start))
		return result, nil
	}
	if res.Shared {
		o.logger.Debug("joined in-flight build", zap.String("key", key), zap.String("id", result.ID))
	}
	o.metrics.ObserveRequest(metrics.OutcomeMiss, o.now().Sub(start))
	return result, nil
}

// build runs both legs concurrently, synthesizes, and stores the result.
func (o *Orchestrator) build(ctx context.Context, req types.ResearchRequest, key string) (types.ResearchResult, error) {
	log := o.logger.With(zap.String("topic", req.Topic), zap.String("depth", string(req.Depth)))
	log.Info("starting research")

	var (
		search   *gateway.SearchPayload
		analysis *string
	)

	// Legs record their own failure and always return nil, so neither
	// cancels the other and Wait returns only after both finish.
	var g errgroup.Group
	g.Go(func() error {
		payload, err := o.searcher.Search(ctx, gateway.SearchQuery(req.Topic, req.Depth))
		if err != nil {
			log.Warn("search leg failed", zap.Error(err))
			o.metrics.LegFailed(metrics.LegSearch)
			return nil
		}
		search = &payload
		return nil
	})
	g.Go(func() error {
		text, err := o.analyzer.Analyze(ctx, gateway.AnalysisPrompt(req.Topic, req.Depth), "")
		if err != nil {
			log.Warn("analysis leg failed", zap.Error(err))
			o.metrics.LegFailed(metrics.LegAnalysis)
			return nil
		}
		analysis = &text
		return nil
	})
	_ = g.Wait()

	var (
		searchData map[string]any
		searchText string
	)
	sources := []string{}
	if search != nil {
		searchData = search.Raw
		searchText = search.Text
		sources = append(sources, search.Citations...)
	}

	prompt, err := combinationPrompt(req.Topic, searchText, analysis)
	if err != nil {
		return types.ResearchResult{}, &OrchestrationError{Topic: req.Topic, Err: err}
	}
	combined, err := o.analyzer.Analyze(ctx, prompt, "")
	if err != nil {
		log.Error("synthesis failed", zap.Error(err))
		o.metrics.SynthesisFailed()
		return types.ResearchResult{}, &OrchestrationError{Topic: req.Topic, Err: err}
	}

	result := types.ResearchResult{
		ID:               o.newID(),
		Topic:            req.Topic,
		Depth:            req.Depth,
		SearchData:       searchData,
		Analysis:         analysis,
		CombinedInsights: combined,
		Sources:          sources,
		Timestamp:        o.now().UTC(),
		Cached:           false,
	}

	o.cache.Set(key, result)
	o.metrics.SetCacheEntries(o.cache.Len())
	log.Info("research complete",
		zap.String("id", result.ID),
		zap.Int("sources", len(sources)),
		zap.Bool("search_ok", search != nil),
		zap.Bool("analysis_ok", analysis != nil))

	if o.recorder != nil {
		if err := o.recorder.Record(ctx, key, result); err != nil {
			log.Warn("archiving result failed", zap.String("id", result.ID), zap.Error(err))
		}
	}
	return result, nil
}

// ClearExpiredCache removes every expired cache entry and returns how many
// were removed.
func (o *Orchestrator) ClearExpiredCache() int {
	n := o.cache.ClearExpired()
	o.metrics.SetCacheEntries(o.cache.Len())
	if n > 0 {
		o.logger.Info("cleared expired cache entries", zap.Int("removed", n))
	}
	return n
}

// CacheStats returns a snapshot of the cache size and TTL.
func (o *Orchestrator) CacheStats() types.CacheStats {
	ttl := o.cache.TTL()
	return types.CacheStats{
		Size:      o.cache.Len(),
		TTL:       ttl,
		TTLMillis: ttl.Milliseconds(),
	}
}
