package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rdstettler/learnapp-sub001/internal/domain/feedback"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBMIT FEEDBACK COMMAND
// Stores one feedback submission. Submissions count toward the
// feedback-based achievement.
// ══════════════════════════════════════════════════════════════════════════════

// MaxFeedbackLength bounds stored feedback text.
const MaxFeedbackLength = 5000

// SubmitFeedbackCommand contains the feedback to store.
type SubmitFeedbackCommand struct {
	// UserID - trusted user identifier.
	UserID string

	// Message - the feedback text.
	Message string
}

// Validate validates the command.
func (c SubmitFeedbackCommand) Validate() error {
	if c.UserID == "" {
		return fmt.Errorf("submit_feedback: user_id is required: %w", shared.ErrValidation)
	}
	if strings.TrimSpace(c.Message) == "" {
		return fmt.Errorf("submit_feedback: message is required: %w", shared.ErrValidation)
	}
	if len(c.Message) > MaxFeedbackLength {
		return fmt.Errorf("submit_feedback: message exceeds %d characters: %w", MaxFeedbackLength, shared.ErrValidation)
	}
	return nil
}

// SubmitFeedbackHandler handles the SubmitFeedbackCommand.
type SubmitFeedbackHandler struct {
	feedbackRepo feedback.Repository
	publisher    shared.EventPublisher
}

// NewSubmitFeedbackHandler creates a new SubmitFeedbackHandler.
func NewSubmitFeedbackHandler(feedbackRepo feedback.Repository, publisher shared.EventPublisher) *SubmitFeedbackHandler {
	return &SubmitFeedbackHandler{feedbackRepo: feedbackRepo, publisher: publisher}
}

// Handle executes the submit feedback command.
func (h *SubmitFeedbackHandler) Handle(ctx context.Context, cmd SubmitFeedbackCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	sub := &feedback.Submission{
		ID:        uuid.NewString(),
		UserID:    cmd.UserID,
		Message:   strings.TrimSpace(cmd.Message),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.feedbackRepo.Save(ctx, sub); err != nil {
		return fmt.Errorf("submit_feedback: %w", err)
	}

	if h.publisher != nil {
		_ = h.publisher.Publish(shared.NewFeedbackSubmittedEvent(cmd.UserID))
	}

	return nil
}
