package command

import (
	"context"
	"fmt"

	"github.com/rdstettler/learnapp-sub001/internal/domain/activity"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE TASKS COMMAND
// Marks session tasks completed. Unknown or foreign task ids are
// silently ignored so stale clients never fail the call.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteTasksCommand contains the task ids to complete.
type CompleteTasksCommand struct {
	// UserID - trusted user identifier.
	UserID string

	// TaskIDs - ids of the tasks the learner finished.
	TaskIDs []string
}

// Validate validates the command.
func (c CompleteTasksCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("complete_tasks: user_id is required: %w", shared.ErrValidation)
	}
	if len(c.TaskIDs) == 0 {
		return fmt.Errorf("complete_tasks: task_ids are required: %w", shared.ErrValidation)
	}
	return nil
}

// CompleteTasksResult reports how many tasks the call actually updated.
type CompleteTasksResult struct {
	// UserID - the user whose tasks were updated.
	UserID string

	// Completed - number of rows actually transitioned to completed.
	Completed int
}

// CompleteTasksHandler handles the CompleteTasksCommand.
type CompleteTasksHandler struct {
	sessionRepo  session.Repository
	activityRepo activity.Repository
	publisher    shared.EventPublisher
}

// NewCompleteTasksHandler creates a new CompleteTasksHandler.
func NewCompleteTasksHandler(
	sessionRepo session.Repository,
	activityRepo activity.Repository,
	publisher shared.EventPublisher,
) *CompleteTasksHandler {
	return &CompleteTasksHandler{
		sessionRepo:  sessionRepo,
		activityRepo: activityRepo,
		publisher:    publisher,
	}
}

// Handle executes the complete tasks command.
func (h *CompleteTasksHandler) Handle(ctx context.Context, cmd CompleteTasksCommand) (*CompleteTasksResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	completed, err := h.sessionRepo.CompleteTasks(ctx, cmd.UserID, cmd.TaskIDs)
	if err != nil {
		return nil, fmt.Errorf("complete_tasks: %w", err)
	}

	if completed > 0 {
		// Finishing tasks counts as activity for streak purposes.
		if err := h.activityRepo.RecordDay(ctx, cmd.UserID, timeutil.Today()); err != nil {
			return nil, fmt.Errorf("complete_tasks: record activity day: %w", err)
		}
		if h.publisher != nil {
			_ = h.publisher.Publish(shared.NewTasksCompletedEvent(cmd.UserID, cmd.TaskIDs))
		}
	}

	return &CompleteTasksResult{
		UserID:    cmd.UserID,
		Completed: completed,
	}, nil
}
