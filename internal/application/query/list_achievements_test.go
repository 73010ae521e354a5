package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
)

func TestListAchievements_JoinsCatalogWithEarnedState(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeAchievementRepo{awarded: []*achievement.Awarded{
		{UserID: "user-1", AchievementID: "first_answer", AwardedAt: at},
	}}
	h := NewListAchievementsHandler(repo)

	views, err := h.Handle(context.Background(), ListAchievementsQuery{UserID: "user-1"})

	require.NoError(t, err)
	assert.Len(t, views, len(achievement.Catalog()), "every catalog entry appears exactly once")

	earned := 0
	for _, v := range views {
		if v.Earned {
			earned++
			assert.Equal(t, "first_answer", v.ID)
			require.NotNil(t, v.AwardedAt)
			assert.Equal(t, at, *v.AwardedAt)
		} else {
			assert.Nil(t, v.AwardedAt)
		}
	}
	assert.Equal(t, 1, earned)
}

func TestListAchievements_OtherUsersAwardsInvisible(t *testing.T) {
	repo := &fakeAchievementRepo{awarded: []*achievement.Awarded{
		{UserID: "user-2", AchievementID: "first_answer", AwardedAt: time.Now().UTC()},
	}}
	h := NewListAchievementsHandler(repo)

	views, err := h.Handle(context.Background(), ListAchievementsQuery{UserID: "user-1"})

	require.NoError(t, err)
	for _, v := range views {
		assert.False(t, v.Earned)
	}
}
