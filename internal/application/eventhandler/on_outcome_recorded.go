// Package eventhandler contains domain event handlers.
package eventhandler

import (
	"context"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/application/command"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON OUTCOME RECORDED HANDLER
// Re-evaluates achievements after ledger activity. Runs deferred on the
// event bus so answering stays fast; a missed check self-heals on the
// next outcome because achievement evaluation is idempotent.
// ═══════════════════════════════════════════════════════════════════════════

// StreakInvalidator drops a user's cached streak summary after new
// activity. A nil invalidator is valid.
type StreakInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// OnOutcomeRecordedHandler triggers the achievement re-check whenever an
// outcome is recorded or tasks are completed.
type OnOutcomeRecordedHandler struct {
	checker     *command.CheckAchievementsHandler
	invalidator StreakInvalidator
	log         *logger.Logger
	timeout     time.Duration
}

// NewOnOutcomeRecordedHandler creates a new OnOutcomeRecordedHandler.
// invalidator may be nil.
func NewOnOutcomeRecordedHandler(checker *command.CheckAchievementsHandler, invalidator StreakInvalidator, log *logger.Logger) *OnOutcomeRecordedHandler {
	if log == nil {
		log = logger.Default()
	}
	return &OnOutcomeRecordedHandler{
		checker:     checker,
		invalidator: invalidator,
		log:         log.With(logger.Component("on_outcome_recorded")),
		timeout:     10 * time.Second,
	}
}

// Register subscribes the handler to the events it reacts to.
func (h *OnOutcomeRecordedHandler) Register(bus shared.EventSubscriber) error {
	for _, t := range []shared.EventType{
		shared.EventOutcomeRecorded,
		shared.EventTasksCompleted,
		shared.EventFeedbackSubmitted,
	} {
		if err := bus.Subscribe(t, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle runs the achievement check for the event's user.
func (h *OnOutcomeRecordedHandler) Handle(event shared.Event) error {
	userID := event.AggregateID()
	if userID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if h.invalidator != nil {
		h.invalidator.Invalidate(ctx, userID)
	}

	result, err := h.checker.Handle(ctx, command.CheckAchievementsCommand{UserID: userID})
	if err != nil {
		h.log.Error("deferred achievement check failed", logger.UserID(userID), logger.Err(err))
		return err
	}

	if len(result.NewlyAwarded) > 0 {
		h.log.Info("achievements unlocked",
			logger.UserID(userID),
			logger.Int("count", len(result.NewlyAwarded)),
		)
	}
	return nil
}
