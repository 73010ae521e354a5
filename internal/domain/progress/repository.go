package progress

import (
	"context"
	"time"
)

// Repository defines persistence operations for the mastery ledger.
// Implementations must make RecordOutcome safe under concurrent and
// duplicate calls through store-level upserts, never application locks.
type Repository interface {
	// RecordOutcome upserts the record for (userID, exerciseID),
	// incrementing the success counter when correct is true and the
	// failure counter otherwise, and stamping the attempt time.
	// The row is created on the first call for the pair.
	RecordOutcome(ctx context.Context, userID, exerciseID string, correct bool, at time.Time) error

	// Get returns the record for (userID, exerciseID).
	// Returns shared.ErrProgressNotFound when no outcome was ever recorded.
	Get(ctx context.Context, userID, exerciseID string) (*Record, error)

	// GetByExerciseIDs returns the records for the given exercise ids in
	// one query. Missing pairs are simply absent from the result map.
	GetByExerciseIDs(ctx context.Context, userID string, exerciseIDs []string) (map[string]*Record, error)

	// Stats returns ledger-wide aggregates for the user, computed in a
	// single round trip: total answered, total correct, distinct
	// exercises, perfect count and mastered count.
	Stats(ctx context.Context, userID string) (*Stats, error)
}

// Stats holds ledger aggregates for one user.
type Stats struct {
	TotalAnswered     int
	TotalCorrect      int
	DistinctExercises int
	PerfectExercises  int
	MasteredExercises int
}
