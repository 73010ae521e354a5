package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rdstettler/learnapp-sub001/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACTIVITY REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ActivityRepository implements activity.Repository for PostgreSQL.
type ActivityRepository struct {
	conn *Connection
}

// NewActivityRepository creates a new ActivityRepository.
func NewActivityRepository(conn *Connection) *ActivityRepository {
	return &ActivityRepository{conn: conn}
}

// RecordDay inserts the presence row for (userID, date). A second insert
// for the same day is absorbed by the primary key.
func (r *ActivityRepository) RecordDay(ctx context.Context, userID string, date time.Time) error {
	query := `
		INSERT INTO activity_days (user_id, day)
		VALUES ($1, $2)
		ON CONFLICT (user_id, day) DO NOTHING
	`

	_, err := r.conn.Exec(ctx, query, userID, timeutil.DateOf(date))
	if err != nil {
		return fmt.Errorf("failed to record activity day: %w", err)
	}

	return nil
}

// GetDays returns all activity dates for the user, newest first.
func (r *ActivityRepository) GetDays(ctx context.Context, userID string) ([]time.Time, error) {
	query := `
		SELECT day
		FROM activity_days
		WHERE user_id = $1
		ORDER BY day DESC
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan activity day: %w", err)
		}
		days = append(days, d.UTC())
	}

	return days, rows.Err()
}

// CountDays returns the total number of active days for the user.
func (r *ActivityRepository) CountDays(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM activity_days WHERE user_id = $1`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count activity days: %w", err)
	}

	return count, nil
}
