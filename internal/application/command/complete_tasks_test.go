package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/achievement"
	"github.com/rdstettler/learnapp-sub001/internal/domain/feedback"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

func awardedIDs(defs []achievement.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}

func submission(userID string) *feedback.Submission {
	return &feedback.Submission{ID: "fb-" + userID, UserID: userID, Message: "more fractions please", CreatedAt: time.Now().UTC()}
}

func seedSession(repo *fakeSessionRepo, userID string, taskIDs ...string) *session.Session {
	s := &session.Session{ID: "sess-1", UserID: userID}
	for i, id := range taskIDs {
		s.Tasks = append(s.Tasks, &session.Task{
			ID: id, SessionID: s.ID, AppID: "math-basic", OrderIndex: i, State: session.TaskPending,
		})
	}
	repo.sessions = append(repo.sessions, s)
	return s
}

func TestCompleteTasks_MarksOwnedPendingTasks(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	activityRepo := newFakeActivityRepo()
	publisher := &capturingPublisher{}
	h := NewCompleteTasksHandler(sessionRepo, activityRepo, publisher)
	seedSession(sessionRepo, "user-1", "task-1", "task-2")

	result, err := h.Handle(context.Background(), CompleteTasksCommand{
		UserID:  "user-1",
		TaskIDs: []string{"task-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed)

	count, _ := activityRepo.CountDays(context.Background(), "user-1")
	assert.Equal(t, 1, count, "completing tasks counts as activity")
	assert.Contains(t, publisher.typesSeen(), shared.EventTasksCompleted)
}

func TestCompleteTasks_ForeignAndUnknownIDsIgnored(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	activityRepo := newFakeActivityRepo()
	h := NewCompleteTasksHandler(sessionRepo, activityRepo, nil)
	seedSession(sessionRepo, "user-1", "task-1")
	seedSession(sessionRepo, "user-2", "task-2")

	result, err := h.Handle(context.Background(), CompleteTasksCommand{
		UserID:  "user-1",
		TaskIDs: []string{"task-1", "task-2", "no-such-task"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Completed, "foreign and unknown ids are skipped, not errors")
}

func TestCompleteTasks_AlreadyCompletedIsNoOp(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	activityRepo := newFakeActivityRepo()
	publisher := &capturingPublisher{}
	h := NewCompleteTasksHandler(sessionRepo, activityRepo, publisher)
	seedSession(sessionRepo, "user-1", "task-1")
	ctx := context.Background()

	first, err := h.Handle(ctx, CompleteTasksCommand{UserID: "user-1", TaskIDs: []string{"task-1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Completed)

	second, err := h.Handle(ctx, CompleteTasksCommand{UserID: "user-1", TaskIDs: []string{"task-1"}})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Completed)

	// No activity or event for a call that changed nothing.
	events := 0
	for _, tp := range publisher.typesSeen() {
		if tp == shared.EventTasksCompleted {
			events++
		}
	}
	assert.Equal(t, 1, events)
}

func TestCompleteTasks_Validation(t *testing.T) {
	h := NewCompleteTasksHandler(&fakeSessionRepo{}, newFakeActivityRepo(), nil)
	ctx := context.Background()

	_, err := h.Handle(ctx, CompleteTasksCommand{TaskIDs: []string{"t"}})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(ctx, CompleteTasksCommand{UserID: "user-1"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
