package achievement

import (
	"context"
	"time"
)

// Repository defines persistence operations for awarded achievements.
type Repository interface {
	// ListAwarded returns all achievements the user has earned.
	ListAwarded(ctx context.Context, userID string) ([]*Awarded, error)

	// Award inserts the (userID, achievementID) row. When a concurrent
	// call already inserted it, the insert is a no-op and newly is false;
	// "award at most once" rests on the store's uniqueness constraint,
	// not on locking.
	Award(ctx context.Context, userID, achievementID string, at time.Time) (newly bool, err error)
}
