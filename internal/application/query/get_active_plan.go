package query

import (
	"context"
	"fmt"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACTIVE PLAN QUERY
// The day-grouped equivalent of the active session lookup.
// ══════════════════════════════════════════════════════════════════════════════

// GetActivePlanQuery contains the parameters for the query.
type GetActivePlanQuery struct {
	// UserID - trusted user identifier.
	UserID string
}

// Validate validates the query.
func (q GetActivePlanQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("get_active_plan: user_id is required: %w", shared.ErrValidation)
	}
	return nil
}

// GetActivePlanHandler handles the GetActivePlanQuery.
type GetActivePlanHandler struct {
	sessionRepo session.Repository
}

// NewGetActivePlanHandler creates a new GetActivePlanHandler.
func NewGetActivePlanHandler(sessionRepo session.Repository) *GetActivePlanHandler {
	return &GetActivePlanHandler{sessionRepo: sessionRepo}
}

// Handle executes the query. Returns shared.ErrNoActivePlan when the
// user has no active plan.
func (h *GetActivePlanHandler) Handle(ctx context.Context, q GetActivePlanQuery) (*session.Plan, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	plan, err := h.sessionRepo.GetActivePlan(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_active_plan: %w", err)
	}
	return plan, nil
}
