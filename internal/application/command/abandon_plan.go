package command

import (
	"context"
	"fmt"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ABANDON PLAN COMMAND
// An explicit Active -> Abandoned transition for the user's current
// plan. Not a cancellation of any in-flight generation.
// ══════════════════════════════════════════════════════════════════════════════

// AbandonPlanCommand identifies the user whose plan to abandon.
type AbandonPlanCommand struct {
	// UserID - trusted user identifier.
	UserID string
}

// Validate validates the command.
func (c AbandonPlanCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("abandon_plan: user_id is required: %w", shared.ErrValidation)
	}
	return nil
}

// AbandonPlanHandler handles the AbandonPlanCommand.
type AbandonPlanHandler struct {
	sessionRepo session.Repository
	publisher   shared.EventPublisher
}

// NewAbandonPlanHandler creates a new AbandonPlanHandler.
func NewAbandonPlanHandler(sessionRepo session.Repository, publisher shared.EventPublisher) *AbandonPlanHandler {
	return &AbandonPlanHandler{sessionRepo: sessionRepo, publisher: publisher}
}

// Handle executes the abandon plan command.
func (h *AbandonPlanHandler) Handle(ctx context.Context, cmd AbandonPlanCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	plan, err := h.sessionRepo.GetActivePlan(ctx, cmd.UserID)
	if err != nil {
		return fmt.Errorf("abandon_plan: %w", err)
	}

	if err := h.sessionRepo.AbandonPlan(ctx, cmd.UserID); err != nil {
		return fmt.Errorf("abandon_plan: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewPlanAbandonedEvent(cmd.UserID, plan.ID))
	}

	return nil
}
