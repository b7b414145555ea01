package services

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"budget/internal/cache"
	"budget/internal/core"
)

// SummaryCache memoises period summaries and collapses concurrent identical queries.
// Cached summaries are shared between callers and must be treated as read-only.
type SummaryCache struct {
	lru        *cache.LRUCache[core.Summary]
	group      singleflight.Group
	generation atomic.Uint64
	suspended  atomic.Bool
}

func NewSummaryCache(maxEntries int, ttl time.Duration) *SummaryCache {
	return &SummaryCache{lru: cache.NewLRUCache[core.Summary](maxEntries, ttl)}
}

// LRU exposes the backing cache so a cache.Manager can expire it.
func (c *SummaryCache) LRU() *cache.LRUCache[core.Summary] {
	return c.lru
}

// Invalidate drops every cached summary. Safe on a nil receiver.
func (c *SummaryCache) Invalidate() {
	if c == nil {
		return
	}
	c.generation.Add(1)
	c.lru.Purge()
}

// Suspend purges the cache and bypasses it until Resume. Used while writes
// from other processes cannot be observed. Safe on a nil receiver.
func (c *SummaryCache) Suspend() {
	if c == nil {
		return
	}
	c.suspended.Store(true)
	c.Invalidate()
}

// Resume re-enables caching after Suspend. Safe on a nil receiver.
func (c *SummaryCache) Resume() {
	if c == nil {
		return
	}
	c.Invalidate()
	c.suspended.Store(false)
}

// Get returns the cached summary for [start, end] or computes it with load.
// A result computed across an Invalidate is returned but not stored.
func (c *SummaryCache) Get(ctx context.Context, start, end core.Date, load func(context.Context) (core.Summary, error)) (core.Summary, error) {
	if c == nil || c.suspended.Load() {
		return load(ctx)
	}

	key := start.String() + "/" + end.String()
	if s, ok := c.lru.Get(key); ok {
		return s, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		gen := c.generation.Load()
		s, err := load(ctx)
		if err != nil {
			return core.Summary{}, err
		}
		if c.generation.Load() == gen && !c.suspended.Load() {
			c.lru.Set(key, s)
		}
		return s, nil
	})
	if err != nil {
		return core.Summary{}, err
	}
	return v.(core.Summary), nil
}
