package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/activity"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

func TestGetStreak_EmptyHistory(t *testing.T) {
	h := NewGetStreakHandler(newFakeActivityRepo(), nil)

	summary, err := h.Handle(context.Background(), GetStreakQuery{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 0, summary.CurrentStreak)
	assert.Equal(t, 0, summary.TotalActiveDays)
	assert.Nil(t, summary.LastActivityDate)
}

func TestGetStreak_ComputesFromActivityDays(t *testing.T) {
	repo := newFakeActivityRepo()
	ctx := context.Background()
	today := timeutil.Today()
	require.NoError(t, repo.RecordDay(ctx, "user-1", today))
	require.NoError(t, repo.RecordDay(ctx, "user-1", today.AddDate(0, 0, -1)))

	h := NewGetStreakHandler(repo, nil)
	summary, err := h.Handle(ctx, GetStreakQuery{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.LongestStreak)
}

func TestGetStreak_CacheHitSkipsStore(t *testing.T) {
	repo := newFakeActivityRepo()
	cache := newFakeStreakCache()
	last := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	cache.entries["user-1"] = &activity.StreakSummary{CurrentStreak: 4, LongestStreak: 9, TotalActiveDays: 20, LastActivityDate: &last}

	h := NewGetStreakHandler(repo, cache)
	summary, err := h.Handle(context.Background(), GetStreakQuery{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 4, summary.CurrentStreak)
	assert.Equal(t, 0, repo.getCalls, "a cache hit must not query the store")
}

func TestGetStreak_MissPopulatesCache(t *testing.T) {
	repo := newFakeActivityRepo()
	cache := newFakeStreakCache()
	ctx := context.Background()
	require.NoError(t, repo.RecordDay(ctx, "user-1", timeutil.Today()))

	h := NewGetStreakHandler(repo, cache)
	_, err := h.Handle(ctx, GetStreakQuery{UserID: "user-1"})

	require.NoError(t, err)
	cached, ok := cache.Get(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, 1, cached.CurrentStreak)
}

func TestGetStreak_Validation(t *testing.T) {
	h := NewGetStreakHandler(newFakeActivityRepo(), nil)

	_, err := h.Handle(context.Background(), GetStreakQuery{})

	assert.ErrorIs(t, err, shared.ErrValidation)
}
