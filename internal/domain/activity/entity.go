// Package activity tracks daily learner activity and derives engagement
// streaks from it. An activity day is a presence-only record: the fact
// that the user did anything at all on a given UTC calendar date.
package activity

import (
	"time"
)

// Day is one presence record, keyed by (UserID, Date). At most one row
// exists per pair; inserting a duplicate is a no-op, not an error.
type Day struct {
	// UserID - the learner who was active.
	UserID string

	// Date - the UTC calendar date of the activity (time part zeroed).
	Date time.Time
}
