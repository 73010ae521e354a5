package redis

import (
	"context"

	"github.com/rdstettler/learnapp-sub001/internal/domain/activity"
)

// ══════════════════════════════════════════════════════════════════════════════
// STREAK CACHE
// ══════════════════════════════════════════════════════════════════════════════

// StreakCache caches computed streak summaries for the read path. The
// TTL is short; recording activity goes straight to the store, so the
// cache only smooths repeated profile loads.
type StreakCache struct {
	cache *Cache
}

// NewStreakCache creates a new StreakCache.
func NewStreakCache(cache *Cache) *StreakCache {
	return &StreakCache{cache: cache}
}

// Get returns the cached summary, or false on a miss.
func (c *StreakCache) Get(ctx context.Context, userID string) (*activity.StreakSummary, bool) {
	var summary activity.StreakSummary
	if err := c.cache.Get(ctx, StreakKey(userID), &summary); err != nil {
		return nil, false
	}
	return &summary, true
}

// Set stores the summary.
func (c *StreakCache) Set(ctx context.Context, userID string, summary *activity.StreakSummary) {
	_ = c.cache.Set(ctx, StreakKey(userID), summary, TTLStreakSummary)
}

// Invalidate drops the cached summary, called after new activity days.
func (c *StreakCache) Invalidate(ctx context.Context, userID string) {
	_ = c.cache.Delete(ctx, StreakKey(userID))
}
