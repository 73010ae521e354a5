package postgres

import (
	"context"
	"fmt"

	"github.com/rdstettler/learnapp-sub001/internal/domain/feedback"
)

// ══════════════════════════════════════════════════════════════════════════════
// FEEDBACK REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// FeedbackRepository implements feedback.Repository for PostgreSQL.
type FeedbackRepository struct {
	conn *Connection
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(conn *Connection) *FeedbackRepository {
	return &FeedbackRepository{conn: conn}
}

// Save inserts a feedback submission.
func (r *FeedbackRepository) Save(ctx context.Context, s *feedback.Submission) error {
	query := `
		INSERT INTO feedback_submissions (id, user_id, message, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query, s.ID, s.UserID, s.Message, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}

	return nil
}

// CountByUser returns the number of submissions by the user.
func (r *FeedbackRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM feedback_submissions WHERE user_id = $1`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}

	return count, nil
}
