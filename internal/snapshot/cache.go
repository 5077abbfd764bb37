package snapshot

import (
	"context"
	"sync"
	"time"
)

// PlanFetcher loads a fresh snapshot for one plan.
type PlanFetcher interface {
	Fetch(ctx context.Context, planID int) (*Snapshot, error)
}

// Cache memoizes snapshots per plan id for a fixed window. A hit inside the
// window returns the prior snapshot without any network call; expiry
// triggers a full refetch whose result replaces the entry wholesale. The
// stored snapshot is treated as immutable.
type Cache struct {
	fetcher PlanFetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[int]cacheEntry
}

type cacheEntry struct {
	snap      *Snapshot
	fetchedAt time.Time
}

// CacheOption configures the Cache during construction.
type CacheOption func(*Cache)

// WithClock overrides the cache clock, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache returns a Cache over the given fetcher with the given window.
func NewCache(fetcher PlanFetcher, ttl time.Duration, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the memoized snapshot for planID, fetching when the entry is
// missing or older than the window. The lock is held across the fetch; this
// is a low-QPS reporting tool and a single in-flight fetch per process is
// the intended behavior.
func (c *Cache) Get(ctx context.Context, planID int) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[planID]; ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.snap, nil
	}

	snap, err := c.fetcher.Fetch(ctx, planID)
	if err != nil {
		return nil, err
	}
	c.entries[planID] = cacheEntry{snap: snap, fetchedAt: c.now()}
	return snap, nil
}

// Invalidate drops the entry for planID so the next Get refetches.
func (c *Cache) Invalidate(planID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, planID)
}
