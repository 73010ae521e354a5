package session

import (
	"context"
)

// OutcomeRepository defines persistence for raw outcome records.
type OutcomeRepository interface {
	// Append inserts a new unprocessed outcome record.
	Append(ctx context.Context, o *RawOutcome) error

	// ListUnprocessed returns all unprocessed records for the user,
	// oldest first.
	ListUnprocessed(ctx context.Context, userID string) ([]*RawOutcome, error)

	// CountUnprocessed returns the number of unprocessed records.
	CountUnprocessed(ctx context.Context, userID string) (int, error)
}

// Repository defines persistence for sessions, tasks and plans.
//
// SaveGenerated persists a freshly generated session together with the
// Unprocessed -> Consumed transition of its source outcome records in
// one transaction, so a crash can never leave tasks written but the
// batch still eligible, or vice versa.
type Repository interface {
	// SaveGenerated atomically persists the session with its tasks and
	// marks the given outcome record ids consumed.
	SaveGenerated(ctx context.Context, s *Session, consumedOutcomeIDs []string) error

	// GetActive returns the most recently created session that still has
	// at least one pending task, with all its tasks loaded.
	// Returns shared.ErrNoActiveSession when none exists.
	GetActive(ctx context.Context, userID string) (*Session, error)

	// CompleteTasks marks the given task ids completed for tasks owned by
	// the user. Unknown or foreign ids are silently skipped; the count of
	// rows actually updated is returned.
	CompleteTasks(ctx context.Context, userID string, taskIDs []string) (int, error)

	// CountCompletedSessions returns the number of the user's sessions
	// with no pending tasks left and at least one task.
	CountCompletedSessions(ctx context.Context, userID string) (int, error)

	// DistinctApps returns the number of distinct apps across the user's tasks.
	DistinctApps(ctx context.Context, userID string) (int, error)

	// SavePlan atomically persists a plan with its day-grouped sessions
	// and tasks and marks the source outcome records consumed.
	SavePlan(ctx context.Context, p *Plan, consumedOutcomeIDs []string) error

	// GetActivePlan returns the user's active plan with tasks loaded.
	// Returns shared.ErrNoActivePlan when none exists.
	GetActivePlan(ctx context.Context, userID string) (*Plan, error)

	// AbandonPlan transitions the user's active plan to abandoned.
	// Returns shared.ErrNoActivePlan when there is none.
	AbandonPlan(ctx context.Context, userID string) error
}

// GenerationLog records a generator interaction for audit purposes.
// Persistence failures here must never fail the overall generation call.
type GenerationLog struct {
	ID       string
	UserID   string
	Request  string
	Response string
}

// GenerationLogRepository defines best-effort audit persistence.
type GenerationLogRepository interface {
	// Save persists one generation interaction.
	Save(ctx context.Context, l *GenerationLog) error
}
