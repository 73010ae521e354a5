// Package feedback stores learner feedback submissions. Feedback is a
// minimal concern here: submissions are counted by the achievement
// snapshot and otherwise only stored.
package feedback

import (
	"context"
	"time"
)

// Submission is one piece of learner feedback.
type Submission struct {
	ID        string
	UserID    string
	Message   string
	CreatedAt time.Time
}

// Repository defines persistence for feedback submissions.
type Repository interface {
	// Save inserts a submission.
	Save(ctx context.Context, s *Submission) error

	// CountByUser returns the number of submissions by the user.
	CountByUser(ctx context.Context, userID string) (int, error)
}
