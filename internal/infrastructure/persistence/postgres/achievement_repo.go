package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	conn *Connection
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection) *AchievementRepository {
	return &AchievementRepository{conn: conn}
}

// ListAwarded returns all achievements the user has earned.
func (r *AchievementRepository) ListAwarded(ctx context.Context, userID string) ([]*achievement.Awarded, error) {
	query := `
		SELECT user_id, achievement_id, awarded_at
		FROM awarded_achievements
		WHERE user_id = $1
		ORDER BY awarded_at
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query awarded achievements: %w", err)
	}
	defer rows.Close()

	var awarded []*achievement.Awarded
	for rows.Next() {
		var a achievement.Awarded
		if err := rows.Scan(&a.UserID, &a.AchievementID, &a.AwardedAt); err != nil {
			return nil, fmt.Errorf("failed to scan awarded achievement: %w", err)
		}
		awarded = append(awarded, &a)
	}

	return awarded, rows.Err()
}

// Award inserts the (userID, achievementID) row. The primary key absorbs
// concurrent duplicate awards; newly reports whether this call won.
func (r *AchievementRepository) Award(ctx context.Context, userID, achievementID string, at time.Time) (bool, error) {
	query := `
		INSERT INTO awarded_achievements (user_id, achievement_id, awarded_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`

	tag, err := r.conn.Exec(ctx, query, userID, achievementID, at)
	if err != nil {
		return false, fmt.Errorf("failed to award achievement: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
