package query

import (
	"context"
	"fmt"

	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ACHIEVEMENTS QUERY
// The read-only companion of achievement checking: the full catalog
// joined with the user's earned state. No aggregation involved.
// ══════════════════════════════════════════════════════════════════════════════

// ListAchievementsQuery contains the parameters for the listing.
type ListAchievementsQuery struct {
	// UserID - trusted user identifier.
	UserID string
}

// Validate validates the query.
func (q ListAchievementsQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("list_achievements: user_id is required: %w", shared.ErrValidation)
	}
	return nil
}

// ListAchievementsHandler handles the ListAchievementsQuery.
type ListAchievementsHandler struct {
	achievementRepo achievement.Repository
}

// NewListAchievementsHandler creates a new ListAchievementsHandler.
func NewListAchievementsHandler(achievementRepo achievement.Repository) *ListAchievementsHandler {
	return &ListAchievementsHandler{achievementRepo: achievementRepo}
}

// Handle executes the listing query.
func (h *ListAchievementsHandler) Handle(ctx context.Context, q ListAchievementsQuery) ([]achievement.View, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	awarded, err := h.achievementRepo.ListAwarded(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("list_achievements: %w", err)
	}
	earnedAt := make(map[string]*achievement.Awarded, len(awarded))
	for _, a := range awarded {
		earnedAt[a.AchievementID] = a
	}

	defs := achievement.Catalog()
	views := make([]achievement.View, 0, len(defs))
	for _, def := range defs {
		view := achievement.View{Definition: def}
		if a, ok := earnedAt[def.ID]; ok {
			view.Earned = true
			at := a.AwardedAt
			view.AwardedAt = &at
		}
		views = append(views, view)
	}
	return views, nil
}
