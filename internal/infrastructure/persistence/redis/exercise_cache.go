package redis

import (
	"context"

	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXERCISE CACHE
// ══════════════════════════════════════════════════════════════════════════════

// ExerciseCache implements exercise.Cache on Redis, sharing resolved
// identities across instances. Failures degrade to a cache miss; the
// resolver then falls through to the store.
type ExerciseCache struct {
	cache *Cache
}

// NewExerciseCache creates a new ExerciseCache.
func NewExerciseCache(cache *Cache) *ExerciseCache {
	return &ExerciseCache{cache: cache}
}

// Get returns the cached exercise id for the resolver key.
func (c *ExerciseCache) Get(ctx context.Context, key string) (string, bool) {
	id, err := c.cache.GetString(ctx, ExerciseKey(key))
	if err != nil {
		// Infrastructure errors degrade to a miss.
		return "", false
	}
	return id, true
}

// Set stores the resolved exercise id for the resolver key.
func (c *ExerciseCache) Set(ctx context.Context, key, id string) {
	// Best effort: resolution works without the cache.
	_ = c.cache.SetString(ctx, ExerciseKey(key), id, TTLExerciseID)
}

var _ exercise.Cache = (*ExerciseCache)(nil)
