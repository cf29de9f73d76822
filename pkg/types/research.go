// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the ai-orchestrator.
// Research requests and results flow between the HTTP surface, the CLI, the
// orchestrator, and the archive; configuration structs are unmarshalled by
// viper at startup.
package types

import (
	"strings"
	"time"
)

// Depth selects how much detail the upstream providers are asked for.
type Depth string

const (
	DepthBasic         Depth = "basic"
	DepthDetailed      Depth = "detailed"
	DepthComprehensive Depth = "comprehensive"
)

// DefaultDepth is used when a request omits the depth.
const DefaultDepth = DepthDetailed

// Valid reports whether d is one of the recognized depth values.
func (d Depth) Valid() bool {
	switch d {
	case DepthBasic, DepthDetailed, DepthComprehensive:
		return true
	}
	return false
}

// OrDefault returns d, or DefaultDepth when d is empty.
func (d Depth) OrDefault() Depth {
	if d == "" {
		return DefaultDepth
	}
	return d
}

// ResearchRequest is the immutable input to a research run.
type ResearchRequest struct {
	// Topic is the subject to research. It must be non-empty after trimming.
	Topic string `json:"topic" yaml:"topic"`

	// Depth selects the level of detail. Empty means DefaultDepth.
	Depth Depth `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// Normalize returns a copy with the topic trimmed and the depth defaulted.
func (r ResearchRequest) Normalize() ResearchRequest {
	return ResearchRequest{
		Topic: strings.TrimSpace(r.Topic),
		Depth: r.Depth.OrDefault(),
	}
}

// CacheKey derives the cache key for the request: the lowercased, trimmed
// topic joined to the depth with an underscore. Requests that differ only in
// surrounding whitespace or letter case share a key.
func (r ResearchRequest) CacheKey() string {
	return strings.ToLower(strings.TrimSpace(r.Topic)) + "_" + string(r.Depth.OrDefault())
}

// ResearchResult is the combined outcome of one research run. It is built
// once per cache miss and returned by value on both miss and hit.
type ResearchResult struct {
	// ID uniquely identifies the build that produced this result.
	ID string `json:"id" yaml:"id"`

	// Topic is the topic as requested.
	Topic string `json:"topic" yaml:"topic"`

	// Depth is the depth the result was built for.
	Depth Depth `json:"depth" yaml:"depth"`

	// SearchData is the decoded search provider payload, or nil when the
	// search leg failed.
	SearchData map[string]any `json:"searchData" yaml:"search_data,omitempty"`

	// Analysis is the first-stage analysis text, or nil when the analysis
	// leg failed.
	Analysis *string `json:"analysis" yaml:"analysis,omitempty"`

	// CombinedInsights is the synthesized narrative merging both legs.
	CombinedInsights string `json:"combinedInsights" yaml:"combined_insights"`

	// Sources lists citation URLs reported by the search provider, in
	// provider order. Never nil.
	Sources []string `json:"sources" yaml:"sources"`

	// Timestamp is when the result was built (UTC).
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Cached is true when the result was served from the cache.
	Cached bool `json:"cached" yaml:"cached"`
}

// Clone returns a copy of r that shares no memory with it. Sources,
// SearchData (including nested maps and slices) and Analysis are copied.
func (r ResearchResult) Clone() ResearchResult {
	c := r
	if r.Sources != nil {
		c.Sources = append([]string(nil), r.Sources...)
	}
	if r.SearchData != nil {
		c.SearchData = cloneMap(r.SearchData)
	}
	if r.Analysis != nil {
		a := *r.Analysis
		c.Analysis = &a
	}
	return c
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue deep-copies the containers produced by decoding JSON into any.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	}
	return v
}

// CacheStats is a point-in-time snapshot of the research cache.
type CacheStats struct {
	// Size is the number of entries currently held, expired or not.
	Size int `json:"size" yaml:"size"`

	// TTL is the configured entry lifetime.
	TTL time.Duration `json:"-" yaml:"-"`

	// TTLMillis is TTL in milliseconds, as reported on the wire.
	TTLMillis int64 `json:"ttl" yaml:"ttl"`
}
