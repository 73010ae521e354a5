// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/rdstettler/learnapp-sub001/internal/domain/activity"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STREAK QUERY
// Derives current/longest consecutive-day runs from the activity log.
// ══════════════════════════════════════════════════════════════════════════════

// GetStreakQuery contains the parameters for the streak query.
type GetStreakQuery struct {
	// UserID - trusted user identifier.
	UserID string
}

// Validate validates the query.
func (q GetStreakQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("get_streak: user_id is required: %w", shared.ErrValidation)
	}
	return nil
}

// StreakCache caches computed summaries for the read path. It is a
// best-effort optimization; a nil cache is valid.
type StreakCache interface {
	// Get returns the cached summary, or false on a miss.
	Get(ctx context.Context, userID string) (*activity.StreakSummary, bool)

	// Set stores the summary.
	Set(ctx context.Context, userID string, summary *activity.StreakSummary)
}

// GetStreakHandler handles the GetStreakQuery.
type GetStreakHandler struct {
	activityRepo activity.Repository
	cache        StreakCache
}

// NewGetStreakHandler creates a new GetStreakHandler. cache may be nil.
func NewGetStreakHandler(activityRepo activity.Repository, cache StreakCache) *GetStreakHandler {
	return &GetStreakHandler{activityRepo: activityRepo, cache: cache}
}

// Handle executes the streak query.
func (h *GetStreakHandler) Handle(ctx context.Context, q GetStreakQuery) (*activity.StreakSummary, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if summary, ok := h.cache.Get(ctx, q.UserID); ok {
			return summary, nil
		}
	}

	days, err := h.activityRepo.GetDays(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_streak: %w", err)
	}

	summary := activity.ComputeStreak(days, timeutil.Today())
	if h.cache != nil {
		h.cache.Set(ctx, q.UserID, &summary)
	}
	return &summary, nil
}
