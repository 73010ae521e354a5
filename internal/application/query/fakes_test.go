package query

import (
	"context"
	"time"

	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
	"github.com/rdstettler/learnapp-sub001/internal/domain/activity"
	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// In-memory fakes for the query handler tests.

type fakeActivityRepo struct {
	days     map[string][]time.Time
	getCalls int
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{days: make(map[string][]time.Time)}
}

func (r *fakeActivityRepo) RecordDay(_ context.Context, userID string, date time.Time) error {
	r.days[userID] = append(r.days[userID], date)
	return nil
}

func (r *fakeActivityRepo) GetDays(_ context.Context, userID string) ([]time.Time, error) {
	r.getCalls++
	return r.days[userID], nil
}

func (r *fakeActivityRepo) CountDays(_ context.Context, userID string) (int, error) {
	return len(r.days[userID]), nil
}

type fakeStreakCache struct {
	entries map[string]*activity.StreakSummary
}

func newFakeStreakCache() *fakeStreakCache {
	return &fakeStreakCache{entries: make(map[string]*activity.StreakSummary)}
}

func (c *fakeStreakCache) Get(_ context.Context, userID string) (*activity.StreakSummary, bool) {
	s, ok := c.entries[userID]
	return s, ok
}

func (c *fakeStreakCache) Set(_ context.Context, userID string, summary *activity.StreakSummary) {
	c.entries[userID] = summary
}

type fakeSessionRepo struct {
	active     *session.Session
	activePlan *session.Plan
}

func (r *fakeSessionRepo) SaveGenerated(context.Context, *session.Session, []string) error { return nil }

func (r *fakeSessionRepo) GetActive(_ context.Context, _ string) (*session.Session, error) {
	if r.active == nil {
		return nil, shared.ErrNoActiveSession
	}
	return r.active, nil
}

func (r *fakeSessionRepo) CompleteTasks(context.Context, string, []string) (int, error) {
	return 0, nil
}

func (r *fakeSessionRepo) CountCompletedSessions(context.Context, string) (int, error) {
	return 0, nil
}

func (r *fakeSessionRepo) DistinctApps(context.Context, string) (int, error) { return 0, nil }

func (r *fakeSessionRepo) SavePlan(context.Context, *session.Plan, []string) error { return nil }

func (r *fakeSessionRepo) GetActivePlan(_ context.Context, _ string) (*session.Plan, error) {
	if r.activePlan == nil {
		return nil, shared.ErrNoActivePlan
	}
	return r.activePlan, nil
}

func (r *fakeSessionRepo) AbandonPlan(context.Context, string) error { return nil }

type fakeOutcomeRepo struct {
	unprocessed int
}

func (r *fakeOutcomeRepo) Append(context.Context, *session.RawOutcome) error { return nil }

func (r *fakeOutcomeRepo) ListUnprocessed(context.Context, string) ([]*session.RawOutcome, error) {
	return nil, nil
}

func (r *fakeOutcomeRepo) CountUnprocessed(context.Context, string) (int, error) {
	return r.unprocessed, nil
}

type fakeExerciseRepo struct {
	catalog []*exercise.Item
}

func (r *fakeExerciseRepo) FindByDescriptor(context.Context, string, string) (*exercise.Item, error) {
	return nil, shared.ErrExerciseNotFound
}

func (r *fakeExerciseRepo) Create(context.Context, *exercise.Item) error { return nil }

func (r *fakeExerciseRepo) ListByApps(_ context.Context, _ []string, limit int) ([]*exercise.Item, error) {
	if len(r.catalog) > limit {
		return r.catalog[:limit], nil
	}
	return r.catalog, nil
}

type fakeAchievementRepo struct {
	awarded []*achievement.Awarded
}

func (r *fakeAchievementRepo) ListAwarded(_ context.Context, userID string) ([]*achievement.Awarded, error) {
	var out []*achievement.Awarded
	for _, a := range r.awarded {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAchievementRepo) Award(context.Context, string, string, time.Time) (bool, error) {
	return false, nil
}
