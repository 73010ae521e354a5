package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXERCISE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ExerciseRepository implements exercise.Repository for PostgreSQL.
// The UNIQUE (app_id, descriptor) constraint is what makes identity
// resolution race-free: concurrent creators collide here and fall back
// to the winning row.
type ExerciseRepository struct {
	conn *Connection
}

// NewExerciseRepository creates a new ExerciseRepository.
func NewExerciseRepository(conn *Connection) *ExerciseRepository {
	return &ExerciseRepository{conn: conn}
}

// FindByDescriptor returns the item with the exact (appID, descriptor) pair.
func (r *ExerciseRepository) FindByDescriptor(ctx context.Context, appID, descriptor string) (*exercise.Item, error) {
	query := `
		SELECT id, app_id, descriptor, needs_review
		FROM exercise_items
		WHERE app_id = $1 AND descriptor = $2
	`

	var item exercise.Item
	err := r.conn.QueryRow(ctx, query, appID, descriptor).Scan(
		&item.ID,
		&item.AppID,
		&item.Descriptor,
		&item.NeedsReview,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrExerciseNotFound
		}
		return nil, fmt.Errorf("failed to find exercise: %w", err)
	}

	return &item, nil
}

// Create inserts a new catalog item.
func (r *ExerciseRepository) Create(ctx context.Context, item *exercise.Item) error {
	query := `
		INSERT INTO exercise_items (id, app_id, descriptor, needs_review, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query, item.ID, item.AppID, item.Descriptor, item.NeedsReview, time.Now().UTC())
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrExerciseExists
		}
		return fmt.Errorf("failed to create exercise: %w", err)
	}

	return nil
}

// ListByApps returns up to limit catalog items for the given apps.
func (r *ExerciseRepository) ListByApps(ctx context.Context, appIDs []string, limit int) ([]*exercise.Item, error) {
	if len(appIDs) == 0 || limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT id, app_id, descriptor, needs_review
		FROM exercise_items
		WHERE app_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.conn.Query(ctx, query, appIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var items []*exercise.Item
	for rows.Next() {
		var item exercise.Item
		if err := rows.Scan(&item.ID, &item.AppID, &item.Descriptor, &item.NeedsReview); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}
