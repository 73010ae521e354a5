package command

import (
	"context"
	"fmt"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
	"github.com/rdstettler/learnapp-sub001/internal/domain/activity"
	"github.com/rdstettler/learnapp-sub001/internal/domain/feedback"
	"github.com/rdstettler/learnapp-sub001/internal/domain/progress"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CHECK ACHIEVEMENTS COMMAND
// Computes one aggregate snapshot in a batched round of queries and
// evaluates every unearned achievement against it. Awarding is
// idempotent: the uniqueness constraint on (user, achievement) makes a
// concurrent duplicate award a no-op, and only achievements newly
// awarded by THIS call are returned.
// ══════════════════════════════════════════════════════════════════════════════

// CheckAchievementsCommand identifies the user to evaluate.
type CheckAchievementsCommand struct {
	// UserID - trusted user identifier.
	UserID string
}

// Validate validates the command.
func (c CheckAchievementsCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("check_achievements: user_id is required: %w", shared.ErrValidation)
	}
	return nil
}

// CheckAchievementsResult contains the newly awarded achievements.
type CheckAchievementsResult struct {
	// UserID - the evaluated user.
	UserID string

	// NewlyAwarded - achievements granted by this call, for notification
	// purposes. Previously earned achievements are never re-returned.
	NewlyAwarded []achievement.Definition

	// Snapshot - the statistics the evaluation ran against.
	Snapshot achievement.Snapshot

	// CheckedAt - when the evaluation ran.
	CheckedAt time.Time
}

// CheckAchievementsHandler handles the CheckAchievementsCommand.
type CheckAchievementsHandler struct {
	progressRepo    progress.Repository
	activityRepo    activity.Repository
	sessionRepo     session.Repository
	feedbackRepo    feedback.Repository
	achievementRepo achievement.Repository
	publisher       shared.EventPublisher
}

// NewCheckAchievementsHandler creates a new CheckAchievementsHandler.
func NewCheckAchievementsHandler(
	progressRepo progress.Repository,
	activityRepo activity.Repository,
	sessionRepo session.Repository,
	feedbackRepo feedback.Repository,
	achievementRepo achievement.Repository,
	publisher shared.EventPublisher,
) *CheckAchievementsHandler {
	return &CheckAchievementsHandler{
		progressRepo:    progressRepo,
		activityRepo:    activityRepo,
		sessionRepo:     sessionRepo,
		feedbackRepo:    feedbackRepo,
		achievementRepo: achievementRepo,
		publisher:       publisher,
	}
}

// Handle executes the check achievements command.
func (h *CheckAchievementsHandler) Handle(ctx context.Context, cmd CheckAchievementsCommand) (*CheckAchievementsResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	snapshot, err := h.buildSnapshot(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("check_achievements: build snapshot: %w", err)
	}

	awarded, err := h.achievementRepo.ListAwarded(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("check_achievements: list awarded: %w", err)
	}
	earned := make(map[string]struct{}, len(awarded))
	for _, a := range awarded {
		earned[a.AchievementID] = struct{}{}
	}

	var newly []achievement.Definition
	for _, def := range achievement.Catalog() {
		if _, ok := earned[def.ID]; ok {
			continue
		}
		if !def.Satisfied(*snapshot) {
			continue
		}

		inserted, err := h.achievementRepo.Award(ctx, cmd.UserID, def.ID, now)
		if err != nil {
			return nil, fmt.Errorf("check_achievements: award %s: %w", def.ID, err)
		}
		if !inserted {
			// A concurrent call awarded it first; not ours to report.
			continue
		}

		newly = append(newly, def)
		if h.publisher != nil {
			_ = h.publisher.Publish(shared.NewAchievementUnlockedEvent(cmd.UserID, def.ID, def.Title))
		}
	}

	return &CheckAchievementsResult{
		UserID:       cmd.UserID,
		NewlyAwarded: newly,
		Snapshot:     *snapshot,
		CheckedAt:    now,
	}, nil
}

// buildSnapshot gathers every statistic the catalog predicates read, in
// one batched round of queries. All predicates are evaluated against
// this single snapshot, never re-queried per badge.
func (h *CheckAchievementsHandler) buildSnapshot(ctx context.Context, userID string) (*achievement.Snapshot, error) {
	stats, err := h.progressRepo.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ledger stats: %w", err)
	}

	days, err := h.activityRepo.GetDays(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("activity days: %w", err)
	}
	streak := activity.ComputeStreak(days, timeutil.Today())

	completedSessions, err := h.sessionRepo.CountCompletedSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("completed sessions: %w", err)
	}

	distinctApps, err := h.sessionRepo.DistinctApps(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("distinct apps: %w", err)
	}

	feedbackCount, err := h.feedbackRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("feedback count: %w", err)
	}

	return &achievement.Snapshot{
		TotalAnswered:     stats.TotalAnswered,
		TotalCorrect:      stats.TotalCorrect,
		DistinctApps:      distinctApps,
		LongestStreak:     streak.LongestStreak,
		CompletedSessions: completedSessions,
		FeedbackCount:     feedbackCount,
		PerfectExercises:  stats.PerfectExercises,
		MasteredExercises: stats.MasteredExercises,
		DistinctExercises: stats.DistinctExercises,
	}, nil
}
