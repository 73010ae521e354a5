package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// OUTCOME REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// OutcomeRepository implements session.OutcomeRepository for PostgreSQL.
type OutcomeRepository struct {
	conn *Connection
}

// NewOutcomeRepository creates a new OutcomeRepository.
func NewOutcomeRepository(conn *Connection) *OutcomeRepository {
	return &OutcomeRepository{conn: conn}
}

// Append inserts a new unprocessed outcome record.
func (r *OutcomeRepository) Append(ctx context.Context, o *session.RawOutcome) error {
	query := `
		INSERT INTO raw_outcomes (id, app_id, user_id, session_id, content, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		o.ID,
		o.AppID,
		o.UserID,
		nullableString(o.SessionID),
		o.Content,
		string(session.OutcomeUnprocessed),
		o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append outcome: %w", err)
	}

	return nil
}

// ListUnprocessed returns all unprocessed records for the user, oldest first.
func (r *OutcomeRepository) ListUnprocessed(ctx context.Context, userID string) ([]*session.RawOutcome, error) {
	query := `
		SELECT id, app_id, user_id, COALESCE(session_id, ''), content, state, created_at
		FROM raw_outcomes
		WHERE user_id = $1 AND state = 'unprocessed'
		ORDER BY created_at
	`

	rows, err := r.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unprocessed outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*session.RawOutcome
	for rows.Next() {
		var o session.RawOutcome
		if err := rows.Scan(&o.ID, &o.AppID, &o.UserID, &o.SessionID, &o.Content, &o.State, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, &o)
	}

	return outcomes, rows.Err()
}

// CountUnprocessed returns the number of unprocessed records.
func (r *OutcomeRepository) CountUnprocessed(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM raw_outcomes WHERE user_id = $1 AND state = 'unprocessed'`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unprocessed outcomes: %w", err)
	}

	return count, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// SessionRepository implements session.Repository for PostgreSQL.
//
// SaveGenerated and SavePlan run inside a single transaction so the
// generated tasks and the Unprocessed -> Consumed transition of their
// source outcome records commit or roll back together.
type SessionRepository struct {
	conn *Connection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(conn *Connection) *SessionRepository {
	return &SessionRepository{conn: conn}
}

// SaveGenerated atomically persists the session with its tasks and marks
// the given outcome record ids consumed.
func (r *SessionRepository) SaveGenerated(ctx context.Context, s *session.Session, consumedOutcomeIDs []string) error {
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if err := insertSession(ctx, tx, s); err != nil {
			return err
		}
		return markConsumed(ctx, tx, s.UserID, consumedOutcomeIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to save generated session: %w", err)
	}

	return nil
}

// SavePlan atomically persists a plan with its day-grouped sessions and
// tasks and marks the source outcome records consumed. Each plan day is
// stored as one session carrying the day's tasks.
func (r *SessionRepository) SavePlan(ctx context.Context, p *session.Plan, consumedOutcomeIDs []string) error {
	err := r.conn.WithTx(ctx, func(tx pgx.Tx) error {
		planQuery := `
			INSERT INTO plans (id, user_id, topic, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, planQuery, p.ID, p.UserID, p.Topic, string(p.Status), p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert plan: %w", err)
		}

		for _, day := range p.Days {
			if len(day.Tasks) == 0 {
				continue
			}

			s := &session.Session{
				ID:        day.Tasks[0].SessionID,
				UserID:    p.UserID,
				Topic:     p.Topic,
				PlanID:    p.ID,
				CreatedAt: p.CreatedAt,
				Tasks:     day.Tasks,
			}
			if err := insertSession(ctx, tx, s); err != nil {
				return err
			}
		}

		return markConsumed(ctx, tx, p.UserID, consumedOutcomeIDs)
	})
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	return nil
}

func insertSession(ctx context.Context, tx pgx.Tx, s *session.Session) error {
	theory := s.Theory
	if theory == nil {
		theory = []session.TheoryBlock{}
	}
	theoryJSON, err := json.Marshal(theory)
	if err != nil {
		return fmt.Errorf("failed to marshal theory: %w", err)
	}

	sessionQuery := `
		INSERT INTO sessions (id, user_id, topic, body, theory, plan_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.Exec(ctx, sessionQuery,
		s.ID,
		s.UserID,
		s.Topic,
		s.Text,
		theoryJSON,
		nullableString(s.PlanID),
		s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	taskQuery := `
		INSERT INTO session_tasks (id, session_id, user_id, app_id, order_index, content, state, day, focus)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	for _, t := range s.Tasks {
		_, err := tx.Exec(ctx, taskQuery,
			t.ID,
			s.ID,
			s.UserID,
			t.AppID,
			t.OrderIndex,
			t.Content,
			string(t.State),
			t.Day,
			t.Focus,
		)
		if err != nil {
			return fmt.Errorf("failed to insert task: %w", err)
		}
	}

	return nil
}

func markConsumed(ctx context.Context, tx pgx.Tx, userID string, outcomeIDs []string) error {
	if len(outcomeIDs) == 0 {
		return nil
	}

	query := `
		UPDATE raw_outcomes
		SET state = 'consumed'
		WHERE user_id = $1 AND id = ANY($2) AND state = 'unprocessed'
	`
	if _, err := tx.Exec(ctx, query, userID, outcomeIDs); err != nil {
		return fmt.Errorf("failed to mark outcomes consumed: %w", err)
	}

	return nil
}

// GetActive returns the most recently created session that still has at
// least one pending task, with all its tasks loaded. Plan-day sessions
// are excluded; plans are surfaced through GetActivePlan.
func (r *SessionRepository) GetActive(ctx context.Context, userID string) (*session.Session, error) {
	query := `
		SELECT s.id, s.user_id, s.topic, s.body, s.theory, COALESCE(s.plan_id, ''), s.created_at
		FROM sessions s
		WHERE s.user_id = $1
		  AND s.plan_id IS NULL
		  AND EXISTS (
			SELECT 1 FROM session_tasks t
			WHERE t.session_id = s.id AND t.state = 'pending'
		  )
		ORDER BY s.created_at DESC
		LIMIT 1
	`

	s, err := r.scanSession(r.conn.QueryRow(ctx, query, userID))
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNoActiveSession
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	s.Tasks, err = r.loadTasks(ctx, s.ID)
	if err != nil {
		return nil, err
	}

	return s, nil
}

// CompleteTasks marks the given task ids completed for tasks owned by
// the user. Unknown or foreign ids simply match no rows.
func (r *SessionRepository) CompleteTasks(ctx context.Context, userID string, taskIDs []string) (int, error) {
	if len(taskIDs) == 0 {
		return 0, nil
	}

	query := `
		UPDATE session_tasks
		SET state = 'completed'
		WHERE user_id = $1 AND id = ANY($2) AND state = 'pending'
	`

	tag, err := r.conn.Exec(ctx, query, userID, taskIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to complete tasks: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// CountCompletedSessions returns the number of the user's sessions with
// at least one task and no pending tasks left.
func (r *SessionRepository) CountCompletedSessions(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM sessions s
		WHERE s.user_id = $1
		  AND EXISTS (SELECT 1 FROM session_tasks t WHERE t.session_id = s.id)
		  AND NOT EXISTS (
			SELECT 1 FROM session_tasks t
			WHERE t.session_id = s.id AND t.state = 'pending'
		  )
	`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed sessions: %w", err)
	}

	return count, nil
}

// DistinctApps returns the number of distinct apps across the user's tasks.
func (r *SessionRepository) DistinctApps(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(DISTINCT app_id) FROM session_tasks WHERE user_id = $1`

	var count int
	if err := r.conn.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct apps: %w", err)
	}

	return count, nil
}

// GetActivePlan returns the user's active plan with tasks loaded,
// grouped by day in ascending order.
func (r *SessionRepository) GetActivePlan(ctx context.Context, userID string) (*session.Plan, error) {
	planQuery := `
		SELECT id, user_id, topic, status, created_at
		FROM plans
		WHERE user_id = $1 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`

	var p session.Plan
	var status string
	err := r.conn.QueryRow(ctx, planQuery, userID).Scan(&p.ID, &p.UserID, &p.Topic, &status, &p.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrNoActivePlan
		}
		return nil, fmt.Errorf("failed to get active plan: %w", err)
	}
	p.Status = session.PlanStatus(status)

	taskQuery := `
		SELECT t.id, t.session_id, t.app_id, t.order_index, t.content, t.state, t.day, t.focus
		FROM session_tasks t
		JOIN sessions s ON s.id = t.session_id
		WHERE s.plan_id = $1
		ORDER BY t.day, t.order_index
	`

	rows, err := r.conn.Query(ctx, taskQuery, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan tasks: %w", err)
	}
	defer rows.Close()

	byDay := make(map[int]*session.PlanDay)
	var dayOrder []int
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}

		day, ok := byDay[t.Day]
		if !ok {
			day = &session.PlanDay{Day: t.Day, Focus: t.Focus}
			byDay[t.Day] = day
			dayOrder = append(dayOrder, t.Day)
		}
		day.Tasks = append(day.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, d := range dayOrder {
		p.Days = append(p.Days, byDay[d])
	}

	return &p, nil
}

// AbandonPlan transitions the user's active plan to abandoned.
func (r *SessionRepository) AbandonPlan(ctx context.Context, userID string) error {
	query := `
		UPDATE plans
		SET status = 'abandoned'
		WHERE user_id = $1 AND status = 'active'
	`

	tag, err := r.conn.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("failed to abandon plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNoActivePlan
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *SessionRepository) scanSession(row pgx.Row) (*session.Session, error) {
	var s session.Session
	var theoryJSON []byte

	err := row.Scan(&s.ID, &s.UserID, &s.Topic, &s.Text, &theoryJSON, &s.PlanID, &s.CreatedAt)
	if err != nil {
		return nil, err
	}

	if len(theoryJSON) > 0 {
		if err := json.Unmarshal(theoryJSON, &s.Theory); err != nil {
			return nil, fmt.Errorf("failed to unmarshal theory: %w", err)
		}
	}

	return &s, nil
}

func (r *SessionRepository) loadTasks(ctx context.Context, sessionID string) ([]*session.Task, error) {
	query := `
		SELECT id, session_id, app_id, order_index, content, state, day, focus
		FROM session_tasks
		WHERE session_id = $1
		ORDER BY order_index
	`

	rows, err := r.conn.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*session.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

func scanTask(rows pgx.Rows) (*session.Task, error) {
	var t session.Task
	var state string

	err := rows.Scan(&t.ID, &t.SessionID, &t.AppID, &t.OrderIndex, &t.Content, &state, &t.Day, &t.Focus)
	if err != nil {
		return nil, fmt.Errorf("failed to scan task: %w", err)
	}
	t.State = session.TaskState(state)

	return &t, nil
}

// nullableString maps "" to NULL for optional foreign keys.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
