package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ACTIVE SESSION QUERY
// Returns the user's most recent session that still has pending tasks.
// When no session is active, the answer depends on how much outcome
// data has accumulated: below the generation threshold the learner gets
// suggested exercises instead; at or above it the caller may generate.
// ══════════════════════════════════════════════════════════════════════════════

// MinOutcomesForGeneration is the minimum number of unprocessed raw
// outcomes required before session generation is worthwhile.
const MinOutcomesForGeneration = 3

// SuggestedExerciseLimit caps how many catalog exercises a "not enough
// data" answer suggests.
const SuggestedExerciseLimit = 5

// ActiveSessionState describes the three possible answers.
type ActiveSessionState string

const (
	// StateActiveSession - a session with pending tasks exists.
	StateActiveSession ActiveSessionState = "active_session"

	// StateNotEnoughData - no session, and too few outcomes to generate.
	StateNotEnoughData ActiveSessionState = "not_enough_data"

	// StateReadyToGenerate - no session, enough outcomes accumulated.
	StateReadyToGenerate ActiveSessionState = "ready_to_generate"
)

// GetActiveSessionQuery contains the parameters for the query.
type GetActiveSessionQuery struct {
	// UserID - trusted user identifier.
	UserID string
}

// Validate validates the query.
func (q GetActiveSessionQuery) Validate() error {
	if q.UserID == "" {
		return fmt.Errorf("get_active_session: user_id is required: %w", shared.ErrValidation)
	}
	return nil
}

// ActiveSessionResult is the discriminated answer.
type ActiveSessionResult struct {
	// State - which of the three answers this is.
	State ActiveSessionState

	// Session - set when State is StateActiveSession.
	Session *session.Session

	// PendingOutcomes - unprocessed outcome count (informational).
	PendingOutcomes int

	// Suggested - catalog exercises to try; set when State is
	// StateNotEnoughData.
	Suggested []*exercise.Item
}

// GetActiveSessionHandler handles the GetActiveSessionQuery.
type GetActiveSessionHandler struct {
	sessionRepo  session.Repository
	outcomeRepo  session.OutcomeRepository
	exerciseRepo exercise.Repository
}

// NewGetActiveSessionHandler creates a new GetActiveSessionHandler.
func NewGetActiveSessionHandler(
	sessionRepo session.Repository,
	outcomeRepo session.OutcomeRepository,
	exerciseRepo exercise.Repository,
) *GetActiveSessionHandler {
	return &GetActiveSessionHandler{
		sessionRepo:  sessionRepo,
		outcomeRepo:  outcomeRepo,
		exerciseRepo: exerciseRepo,
	}
}

// Handle executes the query.
func (h *GetActiveSessionHandler) Handle(ctx context.Context, q GetActiveSessionQuery) (*ActiveSessionResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	active, err := h.sessionRepo.GetActive(ctx, q.UserID)
	if err == nil {
		return &ActiveSessionResult{
			State:   StateActiveSession,
			Session: active,
		}, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("get_active_session: %w", err)
	}

	pending, err := h.outcomeRepo.CountUnprocessed(ctx, q.UserID)
	if err != nil {
		return nil, fmt.Errorf("get_active_session: count outcomes: %w", err)
	}

	if pending >= MinOutcomesForGeneration {
		return &ActiveSessionResult{
			State:           StateReadyToGenerate,
			PendingOutcomes: pending,
		}, nil
	}

	suggested, err := h.exerciseRepo.ListByApps(ctx, exercise.AppIDs(), SuggestedExerciseLimit)
	if err != nil {
		return nil, fmt.Errorf("get_active_session: suggestions: %w", err)
	}

	return &ActiveSessionResult{
		State:           StateNotEnoughData,
		PendingOutcomes: pending,
		Suggested:       suggested,
	}, nil
}
