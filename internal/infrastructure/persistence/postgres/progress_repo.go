package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/domain/progress"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESS REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProgressRepository implements progress.Repository for PostgreSQL.
type ProgressRepository struct {
	conn *Connection
}

// NewProgressRepository creates a new ProgressRepository.
func NewProgressRepository(conn *Connection) *ProgressRepository {
	return &ProgressRepository{conn: conn}
}

// RecordOutcome upserts the ledger row for (userID, exerciseID). The
// increment happens inside the upsert so concurrent recorders never
// lose a count.
func (r *ProgressRepository) RecordOutcome(ctx context.Context, userID, exerciseID string, correct bool, at time.Time) error {
	query := `
		INSERT INTO progress_records (user_id, exercise_id, success_count, failure_count, last_attempt_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			success_count   = progress_records.success_count + EXCLUDED.success_count,
			failure_count   = progress_records.failure_count + EXCLUDED.failure_count,
			last_attempt_at = EXCLUDED.last_attempt_at
	`

	successInc, failureInc := 0, 0
	if correct {
		successInc = 1
	} else {
		failureInc = 1
	}

	_, err := r.conn.Exec(ctx, query, userID, exerciseID, successInc, failureInc, at)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}

	return nil
}

// Get returns the ledger record for (userID, exerciseID).
func (r *ProgressRepository) Get(ctx context.Context, userID, exerciseID string) (*progress.Record, error) {
	query := `
		SELECT user_id, exercise_id, success_count, failure_count, last_attempt_at
		FROM progress_records
		WHERE user_id = $1 AND exercise_id = $2
	`

	var rec progress.Record
	err := r.conn.QueryRow(ctx, query, userID, exerciseID).Scan(
		&rec.UserID,
		&rec.ExerciseID,
		&rec.SuccessCount,
		&rec.FailureCount,
		&rec.LastAttemptAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to get progress record: %w", err)
	}

	return &rec, nil
}

// GetByExerciseIDs returns the ledger records for the given exercises in
// a single query, keyed by exercise id.
func (r *ProgressRepository) GetByExerciseIDs(ctx context.Context, userID string, exerciseIDs []string) (map[string]*progress.Record, error) {
	result := make(map[string]*progress.Record, len(exerciseIDs))
	if len(exerciseIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT user_id, exercise_id, success_count, failure_count, last_attempt_at
		FROM progress_records
		WHERE user_id = $1 AND exercise_id = ANY($2)
	`

	rows, err := r.conn.Query(ctx, query, userID, exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec progress.Record
		if err := rows.Scan(
			&rec.UserID,
			&rec.ExerciseID,
			&rec.SuccessCount,
			&rec.FailureCount,
			&rec.LastAttemptAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		result[rec.ExerciseID] = &rec
	}

	return result, rows.Err()
}

// Stats returns ledger-wide aggregates for the user in one round trip.
func (r *ProgressRepository) Stats(ctx context.Context, userID string) (*progress.Stats, error) {
	query := `
		SELECT
			COALESCE(SUM(success_count + failure_count), 0),
			COALESCE(SUM(success_count), 0),
			COUNT(*),
			COUNT(*) FILTER (WHERE success_count >= $2 AND failure_count = 0),
			COUNT(*) FILTER (WHERE success_count >= $3 AND failure_count = 0)
		FROM progress_records
		WHERE user_id = $1
	`

	var s progress.Stats
	err := r.conn.QueryRow(ctx, query, userID, progress.PerfectSuccessMin, progress.MasteredSuccessMin).Scan(
		&s.TotalAnswered,
		&s.TotalCorrect,
		&s.DistinctExercises,
		&s.PerfectExercises,
		&s.MasteredExercises,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress stats: %w", err)
	}

	return &s, nil
}
