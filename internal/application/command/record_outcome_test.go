package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/exercise"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

// exerciseRepoAdapter backs an exercise.Resolver with a plain map for
// handler tests.
type exerciseRepoAdapter struct {
	items map[string]*exercise.Item
}

func newExerciseRepoAdapter() *exerciseRepoAdapter {
	return &exerciseRepoAdapter{items: make(map[string]*exercise.Item)}
}

func (r *exerciseRepoAdapter) FindByDescriptor(_ context.Context, appID, descriptor string) (*exercise.Item, error) {
	if item, ok := r.items[appID+"|"+descriptor]; ok {
		return item, nil
	}
	return nil, shared.ErrExerciseNotFound
}

func (r *exerciseRepoAdapter) Create(_ context.Context, item *exercise.Item) error {
	k := item.AppID + "|" + item.Descriptor
	if _, ok := r.items[k]; ok {
		return shared.ErrExerciseExists
	}
	r.items[k] = item
	return nil
}

func (r *exerciseRepoAdapter) ListByApps(_ context.Context, _ []string, _ int) ([]*exercise.Item, error) {
	return nil, nil
}

func newRecordOutcomeHandler() (*RecordOutcomeHandler, *fakeProgressRepo, *fakeActivityRepo, *fakeOutcomeRepo, *capturingPublisher) {
	progressRepo := newFakeProgressRepo()
	activityRepo := newFakeActivityRepo()
	outcomeRepo := &fakeOutcomeRepo{}
	publisher := &capturingPublisher{}
	resolver := exercise.NewResolver(newExerciseRepoAdapter(), nil)
	h := NewRecordOutcomeHandler(progressRepo, activityRepo, outcomeRepo, resolver, publisher)
	return h, progressRepo, activityRepo, outcomeRepo, publisher
}

func TestRecordOutcome_UpdatesLedgerAndActivity(t *testing.T) {
	h, _, activityRepo, _, _ := newRecordOutcomeHandler()
	at := time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC)

	result, err := h.Handle(context.Background(), RecordOutcomeCommand{
		UserID:     "user-1",
		AppID:      "math-basic",
		ExerciseID: "ex-1",
		Correct:    true,
		Timestamp:  at,
	})

	require.NoError(t, err)
	assert.Equal(t, "ex-1", result.ExerciseID)
	require.NotNil(t, result.Record)
	assert.Equal(t, 1, result.Record.SuccessCount)
	assert.Equal(t, 0, result.Record.FailureCount)

	days, _ := activityRepo.GetDays(context.Background(), "user-1")
	require.Len(t, days, 1)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), days[0])
}

func TestRecordOutcome_AccumulatesCounters(t *testing.T) {
	h, _, _, _, _ := newRecordOutcomeHandler()
	ctx := context.Background()
	cmd := RecordOutcomeCommand{UserID: "user-1", AppID: "math-basic", ExerciseID: "ex-1"}

	cmd.Correct = true
	_, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	cmd.Correct = false
	result, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Record.SuccessCount)
	assert.Equal(t, 1, result.Record.FailureCount)
	assert.False(t, result.Record.Perfect())
}

func TestRecordOutcome_ResolvesCategory(t *testing.T) {
	h, _, _, _, _ := newRecordOutcomeHandler()
	ctx := context.Background()

	first, err := h.Handle(ctx, RecordOutcomeCommand{
		UserID: "user-1", AppID: "math-basic", Category: "fraction_addition", Correct: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ExerciseID)

	// Same category resolves to the same exercise across users.
	second, err := h.Handle(ctx, RecordOutcomeCommand{
		UserID: "user-2", AppID: "math-basic", Category: "fraction_addition", Correct: false,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ExerciseID, second.ExerciseID)
}

func TestRecordOutcome_QueuesRawOutcomeOnlyWithContent(t *testing.T) {
	h, _, _, outcomeRepo, _ := newRecordOutcomeHandler()
	ctx := context.Background()

	_, err := h.Handle(ctx, RecordOutcomeCommand{
		UserID: "user-1", AppID: "math-basic", ExerciseID: "ex-1", Correct: true,
	})
	require.NoError(t, err)
	assert.Empty(t, outcomeRepo.outcomes)

	_, err = h.Handle(ctx, RecordOutcomeCommand{
		UserID: "user-1", AppID: "math-basic", ExerciseID: "ex-1", Correct: true,
		Content:   `{"question":"1/2 + 1/4"}`,
		SessionID: "sess-9",
	})
	require.NoError(t, err)
	require.Len(t, outcomeRepo.outcomes, 1)
	assert.Equal(t, session.OutcomeUnprocessed, outcomeRepo.outcomes[0].State)
	assert.Equal(t, "sess-9", outcomeRepo.outcomes[0].SessionID)
}

func TestRecordOutcome_PublishesMasteryOnThirdCleanSuccess(t *testing.T) {
	h, _, _, _, publisher := newRecordOutcomeHandler()
	ctx := context.Background()
	cmd := RecordOutcomeCommand{UserID: "user-1", AppID: "math-basic", ExerciseID: "ex-1", Correct: true}

	for i := 0; i < 3; i++ {
		_, err := h.Handle(ctx, cmd)
		require.NoError(t, err)
	}

	types := publisher.typesSeen()
	assert.Contains(t, types, shared.EventExerciseMastered)

	mastered := 0
	for _, tp := range types {
		if tp == shared.EventExerciseMastered {
			mastered++
		}
	}
	assert.Equal(t, 1, mastered, "mastery event fires exactly once, at the crossing")
}

func TestRecordOutcome_Validation(t *testing.T) {
	h, _, _, _, _ := newRecordOutcomeHandler()
	ctx := context.Background()

	_, err := h.Handle(ctx, RecordOutcomeCommand{AppID: "math-basic", ExerciseID: "ex-1"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(ctx, RecordOutcomeCommand{UserID: "u", ExerciseID: "ex-1"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = h.Handle(ctx, RecordOutcomeCommand{UserID: "u", AppID: "a"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	// Exercise id and category are mutually exclusive.
	_, err = h.Handle(ctx, RecordOutcomeCommand{UserID: "u", AppID: "a", ExerciseID: "e", Category: "c"})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
