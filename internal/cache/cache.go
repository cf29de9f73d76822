// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache memoizes research results for a fixed time-to-live.
//
// Entries are never evicted by count. They disappear when a lookup finds
// them expired or when ClearExpired sweeps them. The clock is injectable
// so expiry can be tested without sleeping.
package cache

import (
	"sync"
	"time"

	"github.com/pdiddy/ai-orchestrator/pkg/types"
)

// DefaultTTL is the entry lifetime used when none is configured.
const DefaultTTL = time.Hour

// Store is the cache surface the orchestrator depends on.
type Store interface {
	Get(key string) (types.ResearchResult, bool)
	Set(key string, result types.ResearchResult)
	ClearExpired() int
	Len() int
	TTL() time.Duration
}

type entry struct {
	data     types.ResearchResult
	storedAt time.Time
}

// TTLCache is an in-process Store guarded by a read-write mutex.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a TTLCache.
type Option func(*TTLCache)

// WithClock replaces time.Now as the cache's time source.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) { c.now = now }
}

// New creates an empty cache. A non-positive ttl selects DefaultTTL.
func New(ttl time.Duration, opts ...Option) *TTLCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TTLCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a copy of the result stored under key if it is younger than
// the TTL.
// An expired entry is removed and reported as a miss.
func (c *TTLCache) Get(key string) (types.ResearchResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return types.ResearchResult{}, false
	}
	if !c.expired(e) {
		return e.data.Clone(), true
	}

	c.mu.Lock()
	// Re-check under the write lock; a concurrent Set may have refreshed it.
	if cur, ok := c.entries[key]; ok && c.expired(cur) {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	return types.ResearchResult{}, false
}

// Set stores a copy of result under key, replacing any previous entry.
func (c *TTLCache) Set(key string, result types.ResearchResult) {
	stored := result.Clone()
	c.mu.Lock()
	c.entries[key] = entry{data: stored, storedAt: c.now()}
	c.mu.Unlock()
}

// ClearExpired removes every entry whose age has reached the TTL and
// returns how many were removed.
func (c *TTLCache) ClearExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if c.expired(e) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries held, including expired ones not yet
// swept.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TTL returns the configured entry lifetime.
func (c *TTLCache) TTL() time.Duration { return c.ttl }

func (c *TTLCache) expired(e entry) bool {
	return c.now().Sub(e.storedAt) >= c.ttl
}
