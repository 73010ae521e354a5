package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// GENERATION LOG REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GenerationLogRepository implements session.GenerationLogRepository for
// PostgreSQL. Callers treat failures here as best effort.
type GenerationLogRepository struct {
	conn *Connection
}

// NewGenerationLogRepository creates a new GenerationLogRepository.
func NewGenerationLogRepository(conn *Connection) *GenerationLogRepository {
	return &GenerationLogRepository{conn: conn}
}

// Save persists one generation interaction.
func (r *GenerationLogRepository) Save(ctx context.Context, l *session.GenerationLog) error {
	query := `
		INSERT INTO generation_log (id, user_id, request, response, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query, l.ID, l.UserID, l.Request, l.Response, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save generation log: %w", err)
	}

	return nil
}

// DeleteLoggedBefore removes log entries older than the cutoff and
// returns how many rows were deleted.
func (r *GenerationLogRepository) DeleteLoggedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM generation_log WHERE created_at < $1`

	tag, err := r.conn.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete generation logs: %w", err)
	}

	return tag.RowsAffected(), nil
}
