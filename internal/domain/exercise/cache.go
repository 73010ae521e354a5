package exercise

import (
	"context"
	"sync"
)

// Cache is the resolver's lookup cache. It is a pure performance
// optimization and never authoritative: a miss or a stale entry is
// always corrected by the store's uniqueness constraint. Entries are
// never invalidated; the mapping from descriptor to id is immutable.
type Cache interface {
	// Get returns the cached exercise id for the key and whether it was present.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores the exercise id under the key. Errors are deliberately
	// not reported; the cache is best-effort.
	Set(ctx context.Context, key, exerciseID string)
}

// MemoryCache is a process-local Cache. Multi-instance deployments see
// independent copies that converge through the store's uniqueness
// constraint.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.entries[key]
	return id, ok
}

// Set implements Cache.
func (c *MemoryCache) Set(_ context.Context, key, exerciseID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = exerciseID
}

// NopCache is a Cache that stores nothing. Correctness never depends on
// cache presence, so the resolver works identically with it.
type NopCache struct{}

// Get implements Cache.
func (NopCache) Get(context.Context, string) (string, bool) { return "", false }

// Set implements Cache.
func (NopCache) Set(context.Context, string, string) {}
