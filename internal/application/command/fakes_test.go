package command

import (
	"context"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
	"github.com/rdstettler/learnapp-sub001/internal/domain/feedback"
	"github.com/rdstettler/learnapp-sub001/internal/domain/progress"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// In-memory fakes shared by the command handler tests. They mirror the
// store-level guarantees the real repositories provide: upsert
// increments, duplicate-day absorption, and award-once semantics.

// ─────────────────────────────────────────────────────────────────────────────
// progress.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeProgressRepo struct {
	records map[string]*progress.Record // userID|exerciseID
	err     error
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: make(map[string]*progress.Record)}
}

func (r *fakeProgressRepo) key(userID, exerciseID string) string { return userID + "|" + exerciseID }

func (r *fakeProgressRepo) RecordOutcome(_ context.Context, userID, exerciseID string, correct bool, at time.Time) error {
	if r.err != nil {
		return r.err
	}
	k := r.key(userID, exerciseID)
	rec, ok := r.records[k]
	if !ok {
		rec = &progress.Record{UserID: userID, ExerciseID: exerciseID}
		r.records[k] = rec
	}
	if correct {
		rec.SuccessCount++
	} else {
		rec.FailureCount++
	}
	rec.LastAttemptAt = at
	return nil
}

func (r *fakeProgressRepo) Get(_ context.Context, userID, exerciseID string) (*progress.Record, error) {
	if rec, ok := r.records[r.key(userID, exerciseID)]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, shared.ErrProgressNotFound
}

func (r *fakeProgressRepo) GetByExerciseIDs(_ context.Context, userID string, exerciseIDs []string) (map[string]*progress.Record, error) {
	out := make(map[string]*progress.Record)
	for _, id := range exerciseIDs {
		if rec, ok := r.records[r.key(userID, id)]; ok {
			copied := *rec
			out[id] = &copied
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) Stats(_ context.Context, userID string) (*progress.Stats, error) {
	stats := &progress.Stats{}
	for _, rec := range r.records {
		if rec.UserID != userID {
			continue
		}
		stats.TotalAnswered += rec.Attempts()
		stats.TotalCorrect += rec.SuccessCount
		stats.DistinctExercises++
		if rec.Perfect() {
			stats.PerfectExercises++
		}
		if rec.Mastered() {
			stats.MasteredExercises++
		}
	}
	return stats, nil
}

// seedMastered marks an exercise as mastered for the user.
func (r *fakeProgressRepo) seedMastered(userID, exerciseID string) {
	r.records[r.key(userID, exerciseID)] = &progress.Record{
		UserID:       userID,
		ExerciseID:   exerciseID,
		SuccessCount: progress.MasteredSuccessMin,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// activity.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeActivityRepo struct {
	days map[string]map[time.Time]struct{} // userID -> date set
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{days: make(map[string]map[time.Time]struct{})}
}

func (r *fakeActivityRepo) RecordDay(_ context.Context, userID string, date time.Time) error {
	if r.days[userID] == nil {
		r.days[userID] = make(map[time.Time]struct{})
	}
	r.days[userID][date] = struct{}{}
	return nil
}

func (r *fakeActivityRepo) GetDays(_ context.Context, userID string) ([]time.Time, error) {
	var out []time.Time
	for d := range r.days[userID] {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeActivityRepo) CountDays(_ context.Context, userID string) (int, error) {
	return len(r.days[userID]), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// session.OutcomeRepository
// ─────────────────────────────────────────────────────────────────────────────

type fakeOutcomeRepo struct {
	outcomes []*session.RawOutcome
}

func (r *fakeOutcomeRepo) Append(_ context.Context, o *session.RawOutcome) error {
	copied := *o
	r.outcomes = append(r.outcomes, &copied)
	return nil
}

func (r *fakeOutcomeRepo) ListUnprocessed(_ context.Context, userID string) ([]*session.RawOutcome, error) {
	var out []*session.RawOutcome
	for _, o := range r.outcomes {
		if o.UserID == userID && o.State == session.OutcomeUnprocessed {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOutcomeRepo) CountUnprocessed(ctx context.Context, userID string) (int, error) {
	list, _ := r.ListUnprocessed(ctx, userID)
	return len(list), nil
}

func (r *fakeOutcomeRepo) markConsumed(ids []string) {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for _, o := range r.outcomes {
		if _, ok := set[o.ID]; ok {
			o.State = session.OutcomeConsumed
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// session.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeSessionRepo struct {
	outcomeRepo *fakeOutcomeRepo

	sessions []*session.Session
	plans    []*session.Plan

	completedSessions int
	distinctApps      int

	saveErr error
}

func (r *fakeSessionRepo) SaveGenerated(_ context.Context, s *session.Session, consumedOutcomeIDs []string) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.sessions = append(r.sessions, s)
	if r.outcomeRepo != nil {
		r.outcomeRepo.markConsumed(consumedOutcomeIDs)
	}
	return nil
}

func (r *fakeSessionRepo) GetActive(_ context.Context, userID string) (*session.Session, error) {
	for i := len(r.sessions) - 1; i >= 0; i-- {
		s := r.sessions[i]
		if s.UserID == userID && s.PlanID == "" && s.PendingCount() > 0 {
			return s, nil
		}
	}
	return nil, shared.ErrNoActiveSession
}

func (r *fakeSessionRepo) CompleteTasks(_ context.Context, userID string, taskIDs []string) (int, error) {
	set := make(map[string]struct{}, len(taskIDs))
	for _, id := range taskIDs {
		set[id] = struct{}{}
	}
	updated := 0
	for _, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		for _, t := range s.Tasks {
			if _, ok := set[t.ID]; ok && t.State == session.TaskPending {
				t.State = session.TaskCompleted
				updated++
			}
		}
	}
	return updated, nil
}

func (r *fakeSessionRepo) CountCompletedSessions(_ context.Context, _ string) (int, error) {
	return r.completedSessions, nil
}

func (r *fakeSessionRepo) DistinctApps(_ context.Context, _ string) (int, error) {
	return r.distinctApps, nil
}

func (r *fakeSessionRepo) SavePlan(_ context.Context, p *session.Plan, consumedOutcomeIDs []string) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.plans = append(r.plans, p)
	// One session row per plan day, keyed by the day's tasks.
	for _, day := range p.Days {
		if len(day.Tasks) == 0 {
			continue
		}
		r.sessions = append(r.sessions, &session.Session{
			ID:        day.Tasks[0].SessionID,
			UserID:    p.UserID,
			Topic:     p.Topic,
			PlanID:    p.ID,
			CreatedAt: p.CreatedAt,
			Tasks:     day.Tasks,
		})
	}
	if r.outcomeRepo != nil {
		r.outcomeRepo.markConsumed(consumedOutcomeIDs)
	}
	return nil
}

func (r *fakeSessionRepo) GetActivePlan(_ context.Context, userID string) (*session.Plan, error) {
	for i := len(r.plans) - 1; i >= 0; i-- {
		if r.plans[i].UserID == userID && r.plans[i].Status == session.PlanActive {
			return r.plans[i], nil
		}
	}
	return nil, shared.ErrNoActivePlan
}

func (r *fakeSessionRepo) AbandonPlan(_ context.Context, userID string) error {
	for i := len(r.plans) - 1; i >= 0; i-- {
		if r.plans[i].UserID == userID && r.plans[i].Status == session.PlanActive {
			r.plans[i].Status = session.PlanAbandoned
			return nil
		}
	}
	return shared.ErrNoActivePlan
}

// ─────────────────────────────────────────────────────────────────────────────
// achievement.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeAchievementRepo struct {
	awarded map[string]map[string]time.Time // userID -> achievementID -> at
}

func newFakeAchievementRepo() *fakeAchievementRepo {
	return &fakeAchievementRepo{awarded: make(map[string]map[string]time.Time)}
}

func (r *fakeAchievementRepo) ListAwarded(_ context.Context, userID string) ([]*achievement.Awarded, error) {
	var out []*achievement.Awarded
	for id, at := range r.awarded[userID] {
		out = append(out, &achievement.Awarded{UserID: userID, AchievementID: id, AwardedAt: at})
	}
	return out, nil
}

func (r *fakeAchievementRepo) Award(_ context.Context, userID, achievementID string, at time.Time) (bool, error) {
	if r.awarded[userID] == nil {
		r.awarded[userID] = make(map[string]time.Time)
	}
	if _, ok := r.awarded[userID][achievementID]; ok {
		return false, nil
	}
	r.awarded[userID][achievementID] = at
	return true, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// feedback.Repository
// ─────────────────────────────────────────────────────────────────────────────

type fakeFeedbackRepo struct {
	submissions []*feedback.Submission
}

func (r *fakeFeedbackRepo) Save(_ context.Context, s *feedback.Submission) error {
	r.submissions = append(r.submissions, s)
	return nil
}

func (r *fakeFeedbackRepo) CountByUser(_ context.Context, userID string) (int, error) {
	n := 0
	for _, s := range r.submissions {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// session.Generator and shared.EventPublisher
// ─────────────────────────────────────────────────────────────────────────────

type fakeGenerator struct {
	sessionResp *session.GeneratorResponse
	planResp    *session.PlanGeneratorResponse
	err         error

	lastRequest *session.GeneratorRequest
}

func (g *fakeGenerator) GenerateSession(_ context.Context, req session.GeneratorRequest) (*session.GeneratorResponse, error) {
	g.lastRequest = &req
	if g.err != nil {
		return nil, g.err
	}
	return g.sessionResp, nil
}

func (g *fakeGenerator) GeneratePlan(_ context.Context, req session.GeneratorRequest) (*session.PlanGeneratorResponse, error) {
	g.lastRequest = &req
	if g.err != nil {
		return nil, g.err
	}
	return g.planResp, nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) typesSeen() []shared.EventType {
	out := make([]shared.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}
