// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rdstettler/learnapp-sub001/internal/domain/activity"
	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
	"github.com/rdstettler/learnapp-sub001/internal/domain/progress"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD OUTCOME COMMAND
// Folds one learner answer into the mastery ledger, records the activity
// day, and (for generator-produced exercises) queues a raw outcome record
// for the next generation round.
// ══════════════════════════════════════════════════════════════════════════════

// RecordOutcomeCommand contains the data to record one answer outcome.
type RecordOutcomeCommand struct {
	// UserID - trusted user identifier supplied by the caller.
	UserID string

	// AppID - the exercise app the answer belongs to.
	AppID string

	// ExerciseID - direct exercise id. Mutually exclusive with Category.
	ExerciseID string

	// Category - procedural exercise category, resolved to a stable id
	// on first use. Mutually exclusive with ExerciseID.
	Category string

	// Correct - whether the answer was correct.
	Correct bool

	// Content - the raw exercise content, queued as a raw outcome record
	// for the next generation request when non-empty.
	Content string

	// SessionID - the session the answer came from, if any.
	SessionID string

	// Timestamp - when the outcome occurred (defaults to now if zero).
	Timestamp time.Time
}

// Validate validates the command.
func (c RecordOutcomeCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("record_outcome: user_id is required: %w", shared.ErrValidation)
	}
	if c.AppID == "" {
		return fmt.Errorf("record_outcome: app_id is required: %w", shared.ErrValidation)
	}
	if c.ExerciseID == "" && c.Category == "" {
		return fmt.Errorf("record_outcome: exercise_id or category is required: %w", shared.ErrValidation)
	}
	if c.ExerciseID != "" && c.Category != "" {
		return fmt.Errorf("record_outcome: exercise_id and category are mutually exclusive: %w", shared.ErrValidation)
	}
	return nil
}

// RecordOutcomeResult contains the result of recording an outcome.
type RecordOutcomeResult struct {
	// UserID - the user the outcome was recorded for.
	UserID string

	// ExerciseID - the (possibly resolved) exercise id.
	ExerciseID string

	// Record - the ledger record after the update.
	Record *progress.Record

	// RecordedAt - when the outcome was recorded.
	RecordedAt time.Time
}

// RecordOutcomeHandler handles the RecordOutcomeCommand.
type RecordOutcomeHandler struct {
	progressRepo progress.Repository
	activityRepo activity.Repository
	outcomeRepo  session.OutcomeRepository
	resolver     *exercise.Resolver
	publisher    shared.EventPublisher
}

// NewRecordOutcomeHandler creates a new RecordOutcomeHandler.
func NewRecordOutcomeHandler(
	progressRepo progress.Repository,
	activityRepo activity.Repository,
	outcomeRepo session.OutcomeRepository,
	resolver *exercise.Resolver,
	publisher shared.EventPublisher,
) *RecordOutcomeHandler {
	return &RecordOutcomeHandler{
		progressRepo: progressRepo,
		activityRepo: activityRepo,
		outcomeRepo:  outcomeRepo,
		resolver:     resolver,
		publisher:    publisher,
	}
}

// Handle executes the record outcome command.
func (h *RecordOutcomeHandler) Handle(ctx context.Context, cmd RecordOutcomeCommand) (*RecordOutcomeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	exerciseID := cmd.ExerciseID
	if exerciseID == "" {
		resolved, err := h.resolver.Resolve(ctx, cmd.AppID, cmd.Category)
		if err != nil {
			return nil, fmt.Errorf("record_outcome: %w", err)
		}
		exerciseID = resolved
	}

	if err := h.progressRepo.RecordOutcome(ctx, cmd.UserID, exerciseID, cmd.Correct, timestamp); err != nil {
		return nil, fmt.Errorf("record_outcome: update ledger: %w", err)
	}

	// Duplicate day inserts are absorbed by the store.
	if err := h.activityRepo.RecordDay(ctx, cmd.UserID, timeutil.DateOf(timestamp)); err != nil {
		return nil, fmt.Errorf("record_outcome: record activity day: %w", err)
	}

	if cmd.Content != "" {
		raw := &session.RawOutcome{
			ID:        uuid.NewString(),
			AppID:     cmd.AppID,
			UserID:    cmd.UserID,
			SessionID: cmd.SessionID,
			Content:   cmd.Content,
			State:     session.OutcomeUnprocessed,
			CreatedAt: timestamp,
		}
		if err := h.outcomeRepo.Append(ctx, raw); err != nil {
			return nil, fmt.Errorf("record_outcome: queue raw outcome: %w", err)
		}
	}

	record, err := h.progressRepo.Get(ctx, cmd.UserID, exerciseID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("record_outcome: read back ledger: %w", err)
	}

	if h.publisher != nil {
		// Best-effort; the outcome is already durable.
		_ = h.publisher.Publish(shared.NewOutcomeRecordedEvent(cmd.UserID, cmd.AppID, exerciseID, cmd.Correct))
		if record != nil && record.Mastered() && record.SuccessCount == progress.MasteredSuccessMin {
			_ = h.publisher.Publish(shared.NewExerciseMasteredEvent(cmd.UserID, exerciseID))
		}
	}

	return &RecordOutcomeResult{
		UserID:     cmd.UserID,
		ExerciseID: exerciseID,
		Record:     record,
		RecordedAt: timestamp,
	}, nil
}
