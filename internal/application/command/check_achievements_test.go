package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

func newCheckAchievementsHandler() (*CheckAchievementsHandler, *fakeProgressRepo, *fakeActivityRepo, *fakeSessionRepo, *fakeFeedbackRepo, *fakeAchievementRepo, *capturingPublisher) {
	progressRepo := newFakeProgressRepo()
	activityRepo := newFakeActivityRepo()
	sessionRepo := &fakeSessionRepo{}
	feedbackRepo := &fakeFeedbackRepo{}
	achievementRepo := newFakeAchievementRepo()
	publisher := &capturingPublisher{}
	h := NewCheckAchievementsHandler(progressRepo, activityRepo, sessionRepo, feedbackRepo, achievementRepo, publisher)
	return h, progressRepo, activityRepo, sessionRepo, feedbackRepo, achievementRepo, publisher
}

func TestCheckAchievements_NothingEarnedOnEmptyHistory(t *testing.T) {
	h, _, _, _, _, _, _ := newCheckAchievementsHandler()

	result, err := h.Handle(context.Background(), CheckAchievementsCommand{UserID: "user-1"})

	require.NoError(t, err)
	assert.Empty(t, result.NewlyAwarded)
}

func TestCheckAchievements_FirstAnswerAward(t *testing.T) {
	h, progressRepo, _, _, _, _, publisher := newCheckAchievementsHandler()
	require.NoError(t, progressRepo.RecordOutcome(context.Background(), "user-1", "ex-1", true, time.Now().UTC()))

	result, err := h.Handle(context.Background(), CheckAchievementsCommand{UserID: "user-1"})

	require.NoError(t, err)
	ids := awardedIDs(result.NewlyAwarded)
	assert.Contains(t, ids, "first_answer")
	assert.Contains(t, publisher.typesSeen(), shared.EventAchievementUnlocked)
}

func TestCheckAchievements_SecondCallAwardsNothingNew(t *testing.T) {
	h, progressRepo, _, _, _, _, _ := newCheckAchievementsHandler()
	require.NoError(t, progressRepo.RecordOutcome(context.Background(), "user-1", "ex-1", true, time.Now().UTC()))

	first, err := h.Handle(context.Background(), CheckAchievementsCommand{UserID: "user-1"})
	require.NoError(t, err)
	require.NotEmpty(t, first.NewlyAwarded)

	second, err := h.Handle(context.Background(), CheckAchievementsCommand{UserID: "user-1"})
	require.NoError(t, err)
	assert.Empty(t, second.NewlyAwarded, "already-earned achievements are never re-reported")
}

func TestCheckAchievements_StreakMetricFromActivityDays(t *testing.T) {
	h, _, activityRepo, _, _, _, _ := newCheckAchievementsHandler()
	ctx := context.Background()
	today := timeutil.Today()
	for i := 0; i < 3; i++ {
		require.NoError(t, activityRepo.RecordDay(ctx, "user-1", today.AddDate(0, 0, -i)))
	}

	result, err := h.Handle(ctx, CheckAchievementsCommand{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Snapshot.LongestStreak)
	assert.Contains(t, awardedIDs(result.NewlyAwarded), "streak_3")
}

func TestCheckAchievements_SessionAndFeedbackMetrics(t *testing.T) {
	h, _, _, sessionRepo, feedbackRepo, _, _ := newCheckAchievementsHandler()
	ctx := context.Background()
	sessionRepo.completedSessions = 1
	sessionRepo.distinctApps = 3
	require.NoError(t, feedbackRepo.Save(ctx, submission("user-1")))

	result, err := h.Handle(ctx, CheckAchievementsCommand{UserID: "user-1"})

	require.NoError(t, err)
	ids := awardedIDs(result.NewlyAwarded)
	assert.Contains(t, ids, "sessions_1")
	assert.Contains(t, ids, "explorer_3")
	assert.Contains(t, ids, "feedback_1")
}

func TestCheckAchievements_SnapshotConsistency(t *testing.T) {
	// Mastered exercises also count toward perfect and distinct.
	h, progressRepo, _, _, _, _, _ := newCheckAchievementsHandler()
	progressRepo.seedMastered("user-1", "ex-1")

	result, err := h.Handle(context.Background(), CheckAchievementsCommand{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Snapshot.MasteredExercises)
	assert.Equal(t, 1, result.Snapshot.PerfectExercises)
	assert.Equal(t, 1, result.Snapshot.DistinctExercises)
	assert.Contains(t, awardedIDs(result.NewlyAwarded), "mastered_1")
}

func TestCheckAchievements_Validation(t *testing.T) {
	h, _, _, _, _, _, _ := newCheckAchievementsHandler()

	_, err := h.Handle(context.Background(), CheckAchievementsCommand{})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
