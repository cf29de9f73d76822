// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/ai-orchestrator/internal/cache"
	"github.com/pdiddy/ai-orchestrator/internal/gateway"
	"github.com/pdiddy/ai-orchestrator/internal/metrics"
	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// mockSearcher returns a fixed payload or error and counts calls.
type mockSearcher struct {
	payload gateway.SearchPayload
	err     error
	calls   atomic.Int32
	queries []string
	mu      sync.Mutex
	wait    chan struct{}
}

func (m *mockSearcher) Search(ctx context.Context, query string) (gateway.SearchPayload, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.wait != nil {
		<-m.wait
	}
	if err := ctx.Err(); err != nil {
		return gateway.SearchPayload{}, err
	}
	if m.err != nil {
		return gateway.SearchPayload{}, m.err
	}
	return m.payload, nil
}

// mockAnalyzer answers first-stage prompts with analysis and synthesis
// prompts with synthesize(prompt).
type mockAnalyzer struct {
	analysis    string
	analysisErr error
	synthErr    error
	synthesize  func(prompt string) string

	analysisCalls atomic.Int32
	synthCalls    atomic.Int32

	mu          sync.Mutex
	synthPrompt string
}

func isSynthesis(prompt string) bool {
	return strings.Contains(prompt, "You are synthesizing research")
}

func (m *mockAnalyzer) Analyze(ctx context.Context, prompt, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !isSynthesis(prompt) {
		m.analysisCalls.Add(1)
		if m.analysisErr != nil {
			return "", m.analysisErr
		}
		return m.analysis, nil
	}

	m.synthCalls.Add(1)
	m.mu.Lock()
	m.synthPrompt = prompt
	m.mu.Unlock()
	if m.synthErr != nil {
		return "", m.synthErr
	}
	if m.synthesize != nil {
		return m.synthesize(prompt), nil
	}
	return "combined insights", nil
}

func (m *mockAnalyzer) lastSynthPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synthPrompt
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func okSearcher() *mockSearcher {
	return &mockSearcher{payload: gateway.SearchPayload{
		Raw:       map[string]any{"id": "search-1"},
		Text:      "web search findings",
		Citations: []string{"https://a.example", "https://b.example"},
	}}
}

func okAnalyzer() *mockAnalyzer {
	return &mockAnalyzer{analysis: "first-stage analysis"}
}

func newTestOrchestrator(t *testing.T, s gateway.Searcher, a gateway.Analyzer, opts ...Option) *Orchestrator {
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(s, a, cache.New(time.Hour), opts...)
}

func TestConductMissThenHit(t *testing.T) {
	s, a := okSearcher(), okAnalyzer()
	o := newTestOrchestrator(t, s, a)

	first, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "Go generics", Depth: types.DepthBasic})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, "Go generics", first.Topic)
	assert.Equal(t, types.DepthBasic, first.Depth)
	assert.Equal(t, "combined insights", first.CombinedInsights)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, first.Sources)
	assert.Equal(t, "search-1", first.SearchData["id"])
	require.NotNil(t, first.Analysis)
	assert.Equal(t, "first-stage analysis", *first.Analysis)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, time.UTC, first.Timestamp.Location())

	second, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "Go generics", Depth: types.DepthBasic})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CombinedInsights, second.CombinedInsights)

	assert.Equal(t, int32(1), s.calls.Load(), "cache hit must not call the search provider")
	assert.Equal(t, int32(1), a.analysisCalls.Load())
	assert.Equal(t, int32(1), a.synthCalls.Load())
}

func TestConductCacheKeyNormalization(t *testing.T) {
	s, a := okSearcher(), okAnalyzer()
	o := newTestOrchestrator(t, s, a)

	first, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "Quantum Computing", Depth: types.DepthBasic})
	require.NoError(t, err)

	second, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "quantum computing ", Depth: types.DepthBasic})
	require.NoError(t, err)

	assert.True(t, second.Cached)
	assert.Equal(t, first.CombinedInsights, second.CombinedInsights)
	assert.Equal(t, 1, o.CacheStats().Size)
}

func TestConductDepthsAreSeparateEntries(t *testing.T) {
	s, a := okSearcher(), okAnalyzer()
	o := newTestOrchestrator(t, s, a)

	_, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "rust", Depth: types.DepthBasic})
	require.NoError(t, err)
	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "rust", Depth: types.DepthComprehensive})
	require.NoError(t, err)

	assert.False(t, res.Cached)
	assert.Equal(t, 2, o.CacheStats().Size)
	assert.Equal(t, int32(2), s.calls.Load())
}

func TestConductDepthDefault(t *testing.T) {
	s, a := okSearcher(), okAnalyzer()
	o := newTestOrchestrator(t, s, a)

	first, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "fusion energy"})
	require.NoError(t, err)
	assert.Equal(t, types.DepthDetailed, first.Depth)
	assert.Equal(t, "Provide detailed information with examples about: fusion energy", s.queries[0])

	second, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "fusion energy", Depth: types.DepthDetailed})
	require.NoError(t, err)
	assert.True(t, second.Cached, "omitted depth and detailed share an entry")
}

func TestConductTTLExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s, a := okSearcher(), okAnalyzer()
	o := New(s, a, cache.New(time.Hour, cache.WithClock(clock.Now)),
		WithLogger(zaptest.NewLogger(t)), WithClock(clock.Now))

	req := types.ResearchRequest{Topic: "ttl", Depth: types.DepthBasic}
	_, err := o.Conduct(context.Background(), req)
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Millisecond)
	res, err := o.Conduct(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, res.Cached, "hit strictly before T+TTL")

	clock.Advance(time.Millisecond)
	res, err = o.Conduct(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Cached, "miss at T+TTL")
	assert.Equal(t, int32(2), s.calls.Load())
	assert.Equal(t, clock.Now(), res.Timestamp)
}

func TestConductSearchLegFailure(t *testing.T) {
	s := &mockSearcher{err: &gateway.UpstreamError{Provider: "perplexity", StatusCode: 500, Body: "down"}}
	a := okAnalyzer()
	o := newTestOrchestrator(t, s, a)

	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "partial", Depth: types.DepthBasic})
	require.NoError(t, err)

	assert.False(t, res.Cached)
	assert.NotEmpty(t, res.CombinedInsights)
	assert.Equal(t, []string{}, res.Sources)
	assert.Nil(t, res.SearchData)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, int32(1), a.analysisCalls.Load(), "analysis leg still runs")

	prompt := a.lastSynthPrompt()
	assert.Contains(t, prompt, "No data available")
	assert.Contains(t, prompt, "first-stage analysis")
}

func TestConductAnalysisLegFailure(t *testing.T) {
	s := okSearcher()
	a := &mockAnalyzer{analysisErr: errors.New("timeout")}
	o := newTestOrchestrator(t, s, a)

	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "partial", Depth: types.DepthBasic})
	require.NoError(t, err)

	assert.Nil(t, res.Analysis)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, res.Sources)
	prompt := a.lastSynthPrompt()
	assert.Contains(t, prompt, "web search findings")
	assert.Contains(t, prompt, "No analysis available")
}

func TestConductBothLegsFail(t *testing.T) {
	s := &mockSearcher{err: errors.New("search down")}
	a := &mockAnalyzer{analysisErr: errors.New("analysis down")}
	m := metrics.New()
	o := newTestOrchestrator(t, s, a, WithMetrics(m))

	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "degraded"})
	require.NoError(t, err)

	assert.False(t, res.Cached)
	assert.Equal(t, "combined insights", res.CombinedInsights)
	assert.Equal(t, []string{}, res.Sources)
	assert.Nil(t, res.SearchData)
	assert.Nil(t, res.Analysis)

	prompt := a.lastSynthPrompt()
	assert.Contains(t, prompt, "No data available")
	assert.Contains(t, prompt, "No analysis available")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LegFailures.WithLabelValues(metrics.LegSearch)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LegFailures.WithLabelValues(metrics.LegAnalysis)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(metrics.OutcomeMiss)))
}

func TestConductEmptyLegOutputsUsePlaceholders(t *testing.T) {
	s := &mockSearcher{payload: gateway.SearchPayload{Raw: map[string]any{}, Citations: []string{}}}
	a := &mockAnalyzer{analysis: ""}
	o := newTestOrchestrator(t, s, a)

	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "empty"})
	require.NoError(t, err)

	require.NotNil(t, res.Analysis, "an empty analysis is still a successful leg")
	prompt := a.lastSynthPrompt()
	assert.Contains(t, prompt, "No data available")
	assert.Contains(t, prompt, "No analysis available")
}

func TestConductSynthesisFailure(t *testing.T) {
	s, a := okSearcher(), okAnalyzer()
	cause := &gateway.UpstreamError{Provider: "anthropic", StatusCode: 529, Body: "overloaded"}
	a.synthErr = cause
	m := metrics.New()
	o := newTestOrchestrator(t, s, a, WithMetrics(m))

	_, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "doomed topic"})
	require.Error(t, err)

	var orchErr *OrchestrationError
	require.True(t, errors.As(err, &orchErr))
	assert.Equal(t, "doomed topic", orchErr.Topic)
	assert.Equal(t, "failed to conduct research on topic: doomed topic", err.Error())

	var upErr *gateway.UpstreamError
	require.True(t, errors.As(err, &upErr), "cause stays reachable")
	assert.Equal(t, 529, upErr.StatusCode)

	assert.Equal(t, 0, o.CacheStats().Size, "nothing is cached on failure")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SynthesisFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(metrics.OutcomeError)))
}

func TestConductValidation(t *testing.T) {
	tests := []struct {
		name  string
		req   types.ResearchRequest
		field string
	}{
		{"empty topic", types.ResearchRequest{Topic: ""}, "topic"},
		{"whitespace topic", types.ResearchRequest{Topic: "  \t\n"}, "topic"},
		{"unknown depth", types.ResearchRequest{Topic: "ok", Depth: "exhaustive"}, "depth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, a := okSearcher(), okAnalyzer()
			m := metrics.New()
			o := newTestOrchestrator(t, s, a, WithMetrics(m))

			_, err := o.Conduct(context.Background(), tt.req)
			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)

			assert.Equal(t, int32(0), s.calls.Load())
			assert.Equal(t, int32(0), a.analysisCalls.Load())
			assert.Equal(t, 0, o.CacheStats().Size)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(metrics.OutcomeInvalid)))
		})
	}
}

func TestConductSingleFlight(t *testing.T) {
	s := okSearcher()
	s.wait = make(chan struct{})
	a := okAnalyzer()
	o := newTestOrchestrator(t, s, a)

	const callers = 8
	results := make([]types.ResearchResult, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = o.Conduct(context.Background(), types.ResearchRequest{Topic: "Same Topic", Depth: types.DepthBasic})
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(s.wait)
	wg.Wait()

	assert.Equal(t, int32(1), s.calls.Load(), "one build per key")
	assert.Equal(t, int32(1), a.synthCalls.Load())
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0].ID, results[i].ID)
		assert.Equal(t, "combined insights", results[i].CombinedInsights)
	}

	results[0].Sources[0] = "changed"
	assert.Equal(t, "https://a.example", results[1].Sources[0], "waiters get separate copies")
}

func TestConductCallerCancelDoesNotFailSharedBuild(t *testing.T) {
	s := okSearcher()
	s.wait = make(chan struct{})
	a := okAnalyzer()
	o := newTestOrchestrator(t, s, a)
	req := types.ResearchRequest{Topic: "shared", Depth: types.DepthBasic}

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := o.Conduct(ctx, req)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return s.calls.Load() == 1 }, time.Second, time.Millisecond)

	type outcome struct {
		res types.ResearchResult
		err error
	}
	second := make(chan outcome, 1)
	go func() {
		res, err := o.Conduct(context.Background(), req)
		second <- outcome{res, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	close(s.wait)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "combined insights", got.res.CombinedInsights)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, got.res.Sources, "search leg ran to completion")
	assert.Equal(t, int32(1), s.calls.Load())
	assert.Equal(t, int32(1), a.synthCalls.Load())
}

func TestConductResultsDoNotAliasCache(t *testing.T) {
	s := okSearcher()
	s.payload.Raw = map[string]any{"id": "search-1", "choices": []any{map[string]any{"text": "x"}}}
	o := newTestOrchestrator(t, s, okAnalyzer())
	req := types.ResearchRequest{Topic: "alias", Depth: types.DepthBasic}

	first, err := o.Conduct(context.Background(), req)
	require.NoError(t, err)
	first.Sources[0] = "changed"
	first.SearchData["id"] = "changed"
	first.SearchData["choices"].([]any)[0].(map[string]any)["text"] = "changed"
	*first.Analysis = "changed"

	hit, err := o.Conduct(context.Background(), req)
	require.NoError(t, err)
	require.True(t, hit.Cached)
	assert.Equal(t, "https://a.example", hit.Sources[0])
	assert.Equal(t, "search-1", hit.SearchData["id"])
	assert.Equal(t, "x", hit.SearchData["choices"].([]any)[0].(map[string]any)["text"])
	assert.Equal(t, "first-stage analysis", *hit.Analysis)

	hit.Sources[1] = "changed"
	again, err := o.Conduct(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", again.Sources[1])
}

func TestConductMissRefreshesCacheGaugeAfterExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	a := okAnalyzer()
	m := metrics.New()
	o := New(okSearcher(), a, cache.New(time.Hour, cache.WithClock(clock.Now)),
		WithLogger(zaptest.NewLogger(t)), WithClock(clock.Now), WithMetrics(m))

	req := types.ResearchRequest{Topic: "gauge", Depth: types.DepthBasic}
	_, err := o.Conduct(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEntries))

	clock.Advance(time.Hour)
	a.synthErr = errors.New("synthesis down")
	_, err = o.Conduct(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CacheEntries), "expired entry dropped on lookup")
}

func TestConductDifferentKeysBuildIndependently(t *testing.T) {
	s, a := okSearcher(), okAnalyzer()
	o := newTestOrchestrator(t, s, a)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: fmt.Sprintf("topic %d", i)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(4), s.calls.Load())
	assert.Equal(t, 4, o.CacheStats().Size)
}

func TestConductSynthesisMatchesOwnTopic(t *testing.T) {
	s, a := okSearcher(), okAnalyzer()
	a.synthesize = func(prompt string) string {
		// Echo the topic line so each result can be checked against its key.
		for _, line := range strings.Split(prompt, "\n") {
			if strings.HasPrefix(line, "You are synthesizing research on the topic:") {
				return line
			}
		}
		return ""
	}
	o := newTestOrchestrator(t, s, a)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			topic := fmt.Sprintf("subject-%d", i)
			res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: topic})
			assert.NoError(t, err)
			assert.Contains(t, res.CombinedInsights, `"`+topic+`"`)
		}(i)
	}
	wg.Wait()
}

func TestCacheStatsIdempotent(t *testing.T) {
	o := newTestOrchestrator(t, okSearcher(), okAnalyzer())
	_, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "stats"})
	require.NoError(t, err)

	first := o.CacheStats()
	second := o.CacheStats()
	assert.Equal(t, first, second)
	assert.Equal(t, 1, first.Size)
	assert.Equal(t, time.Hour, first.TTL)
	assert.Equal(t, int64(3600000), first.TTLMillis)
}

func TestClearExpiredCache(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	m := metrics.New()
	o := New(okSearcher(), okAnalyzer(), cache.New(time.Hour, cache.WithClock(clock.Now)),
		WithLogger(zaptest.NewLogger(t)), WithClock(clock.Now), WithMetrics(m))

	_, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "old"})
	require.NoError(t, err)
	clock.Advance(45 * time.Minute)
	_, err = o.Conduct(context.Background(), types.ResearchRequest{Topic: "new"})
	require.NoError(t, err)

	assert.Equal(t, 0, o.ClearExpiredCache(), "nothing expired yet")
	assert.Equal(t, 2, o.CacheStats().Size)

	clock.Advance(15 * time.Minute)
	assert.Equal(t, 1, o.ClearExpiredCache())
	assert.Equal(t, 1, o.CacheStats().Size)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEntries))

	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "new"})
	require.NoError(t, err)
	assert.True(t, res.Cached, "fresh entry survives the sweep")

	assert.Equal(t, 0, o.ClearExpiredCache(), "repeated sweep is a no-op")
}

type recordingRecorder struct {
	mu   sync.Mutex
	keys []string
	ids  []string
	err  error
}

func (r *recordingRecorder) Record(_ context.Context, key string, result types.ResearchResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
	r.ids = append(r.ids, result.ID)
	return r.err
}

func TestConductRecordsFreshBuildsOnly(t *testing.T) {
	rec := &recordingRecorder{}
	o := newTestOrchestrator(t, okSearcher(), okAnalyzer(), WithRecorder(rec))

	first, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "Archive Me", Depth: types.DepthBasic})
	require.NoError(t, err)
	_, err = o.Conduct(context.Background(), types.ResearchRequest{Topic: "archive me", Depth: types.DepthBasic})
	require.NoError(t, err)

	assert.Equal(t, []string{"archive me_basic"}, rec.keys)
	assert.Equal(t, []string{first.ID}, rec.ids)
}

func TestConductRecorderFailureIsNotFatal(t *testing.T) {
	rec := &recordingRecorder{err: errors.New("disk full")}
	o := newTestOrchestrator(t, okSearcher(), okAnalyzer(), WithRecorder(rec))

	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "resilient"})
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 1, o.CacheStats().Size)
}

func TestConductFusionEnergyScenario(t *testing.T) {
	s := &mockSearcher{payload: gateway.SearchPayload{
		Raw:       map[string]any{"choices": []any{}},
		Text:      "Fusion research is advancing at ITER.",
		Citations: []string{},
	}}
	a := &mockAnalyzer{
		analysis: "Fusion promises abundant clean energy.",
		synthesize: func(prompt string) string {
			var parts []string
			for _, want := range []string{"Fusion research is advancing at ITER.", "Fusion promises abundant clean energy."} {
				if strings.Contains(prompt, want) {
					parts = append(parts, want)
				}
			}
			return "## Summary\n- " + strings.Join(parts, "\n- ")
		},
	}
	o := newTestOrchestrator(t, s, a)

	res, err := o.Conduct(context.Background(), types.ResearchRequest{Topic: "fusion energy", Depth: types.DepthBasic})
	require.NoError(t, err)

	assert.Equal(t, []string{}, res.Sources)
	assert.False(t, res.Cached)
	assert.Contains(t, res.CombinedInsights, "Fusion research is advancing at ITER.")
	assert.Contains(t, res.CombinedInsights, "Fusion promises abundant clean energy.")
	assert.Equal(t, "Provide a brief overview about: fusion energy", s.queries[0])

	body, err := json.Marshal(res)
	require.NoError(t, err)
	var wire map[string]any
	require.NoError(t, json.Unmarshal(body, &wire))

	ts, ok := wire["timestamp"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339Nano, ts)
	assert.NoError(t, err, "timestamp is ISO-8601")
	assert.Equal(t, false, wire["cached"])
	assert.Equal(t, []any{}, wire["sources"])
	assert.Equal(t, "Fusion promises abundant clean energy.", wire["analysis"])
}

func TestNewDefaultsCache(t *testing.T) {
	o := New(okSearcher(), okAnalyzer(), nil)
	assert.Equal(t, cache.DefaultTTL, o.CacheStats().TTL)
}
