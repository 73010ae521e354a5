package activity

import (
	"context"
	"time"
)

// Repository defines persistence operations for activity days.
type Repository interface {
	// RecordDay inserts the presence row for (userID, date). Duplicate
	// inserts are absorbed by the store's uniqueness constraint and
	// reported as success.
	RecordDay(ctx context.Context, userID string, date time.Time) error

	// GetDays returns all activity dates for the user, sorted descending.
	GetDays(ctx context.Context, userID string) ([]time.Time, error)

	// CountDays returns the total number of active days for the user.
	CountDays(ctx context.Context, userID string) (int, error)
}
