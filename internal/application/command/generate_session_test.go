package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/progress"
	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

func seedPendingOutcome(repo *fakeOutcomeRepo, id, userID string) {
	repo.outcomes = append(repo.outcomes, &session.RawOutcome{
		ID:      id,
		AppID:   "math-basic",
		UserID:  userID,
		Content: `{"question":"1/2 + 1/4","answer":"3/4"}`,
		State:   session.OutcomeUnprocessed,
	})
}

func newGenerateSessionHandler(gen *fakeGenerator) (*GenerateSessionHandler, *fakeProgressRepo, *fakeOutcomeRepo, *fakeSessionRepo, *capturingPublisher) {
	progressRepo := newFakeProgressRepo()
	outcomeRepo := &fakeOutcomeRepo{}
	sessionRepo := &fakeSessionRepo{outcomeRepo: outcomeRepo}
	publisher := &capturingPublisher{}
	h := NewGenerateSessionHandler(outcomeRepo, sessionRepo, progressRepo, nil, gen, publisher, nil)
	return h, progressRepo, outcomeRepo, sessionRepo, publisher
}

func TestGenerateSession_NoPendingOutcomes(t *testing.T) {
	h, _, _, _, _ := newGenerateSessionHandler(&fakeGenerator{})

	_, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})

	assert.ErrorIs(t, err, shared.ErrNoPendingOutcomes)
}

func TestGenerateSession_HappyPath(t *testing.T) {
	gen := &fakeGenerator{sessionResp: &session.GeneratorResponse{
		Topic: "Fractions",
		Text:  "Keep practicing fraction addition.",
		Tasks: []session.GeneratedTask{
			{AppID: "math-basic", Content: json.RawMessage(`{"question":"2/3 + 1/6"}`)},
			{AppID: "math-basic", Content: json.RawMessage(`{"question":"1/5 + 2/5"}`)},
		},
	}}
	h, _, outcomeRepo, sessionRepo, publisher := newGenerateSessionHandler(gen)
	seedPendingOutcome(outcomeRepo, "out-1", "user-1")
	seedPendingOutcome(outcomeRepo, "out-2", "user-1")

	result, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 2, result.ConsumedOutcomes)
	assert.Equal(t, 0, result.FilteredMastered)
	require.Len(t, result.Session.Tasks, 2)
	assert.Equal(t, 0, result.Session.Tasks[0].OrderIndex)
	assert.Equal(t, 1, result.Session.Tasks[1].OrderIndex)
	assert.Equal(t, session.TaskPending, result.Session.Tasks[0].State)

	// Both outcome records flipped to consumed together with the save.
	remaining, _ := outcomeRepo.CountUnprocessed(context.Background(), "user-1")
	assert.Equal(t, 0, remaining)
	require.Len(t, sessionRepo.sessions, 1)

	assert.Contains(t, publisher.typesSeen(), shared.EventSessionGenerated)

	// Language defaults when the caller supplies none.
	assert.Equal(t, DefaultLanguage, gen.lastRequest.LanguagePreference)
}

func TestGenerateSession_FoldsResultAnalysis(t *testing.T) {
	graded := `{"question":"1/2 + 1/4","answer":"3/4"}`
	gen := &fakeGenerator{sessionResp: &session.GeneratorResponse{
		ResultAnalysis: []session.ResultAnalysis{
			{ResultID: "out-1", IsCorrect: true, QuestionHashContent: graded},
			{ResultID: "out-2", IsCorrect: false, QuestionHashContent: ""}, // no content, skipped
		},
		Topic: "Fractions",
	}}
	h, progressRepo, outcomeRepo, _, _ := newGenerateSessionHandler(gen)
	seedPendingOutcome(outcomeRepo, "out-1", "user-1")

	_, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})
	require.NoError(t, err)

	rec, err := progressRepo.Get(context.Background(), "user-1", progress.Fingerprint(graded))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.SuccessCount)
}

func TestGenerateSession_FiltersMasteredTasks(t *testing.T) {
	masteredContent := `{"question":"2/3 + 1/6"}`
	freshContent := `{"question":"1/5 + 2/5"}`
	gen := &fakeGenerator{sessionResp: &session.GeneratorResponse{
		Topic: "Fractions",
		Tasks: []session.GeneratedTask{
			{AppID: "math-basic", Content: json.RawMessage(masteredContent)},
			{AppID: "math-basic", Content: json.RawMessage(freshContent)},
		},
	}}
	h, progressRepo, outcomeRepo, _, _ := newGenerateSessionHandler(gen)
	progressRepo.seedMastered("user-1", progress.Fingerprint(masteredContent))
	seedPendingOutcome(outcomeRepo, "out-1", "user-1")

	result, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.FilteredMastered)
	require.Len(t, result.Session.Tasks, 1)
	assert.Equal(t, string(json.RawMessage(freshContent)), result.Session.Tasks[0].Content)
	assert.Equal(t, 0, result.Session.Tasks[0].OrderIndex, "order indexes are reassigned after filtering")
}

func TestGenerateSession_AllMasteredYieldsNothingNew(t *testing.T) {
	content := `{"question":"2/3 + 1/6"}`
	gen := &fakeGenerator{sessionResp: &session.GeneratorResponse{
		Topic: "Fractions",
		Text:  "Here is new material.",
		Tasks: []session.GeneratedTask{
			{AppID: "math-basic", Content: json.RawMessage(content)},
		},
	}}
	h, progressRepo, outcomeRepo, sessionRepo, _ := newGenerateSessionHandler(gen)
	progressRepo.seedMastered("user-1", progress.Fingerprint(content))
	seedPendingOutcome(outcomeRepo, "out-1", "user-1")

	result, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})

	require.NoError(t, err)
	assert.Empty(t, result.Session.Tasks)
	assert.Equal(t, NothingNewMessage, result.Session.Text)

	// The empty session still persists and still consumes the batch.
	require.Len(t, sessionRepo.sessions, 1)
	remaining, _ := outcomeRepo.CountUnprocessed(context.Background(), "user-1")
	assert.Equal(t, 0, remaining)
}

func TestGenerateSession_GeneratorFailureLeavesOutcomesUnprocessed(t *testing.T) {
	gen := &fakeGenerator{err: shared.ErrGeneratorUnavailable}
	h, _, outcomeRepo, sessionRepo, _ := newGenerateSessionHandler(gen)
	seedPendingOutcome(outcomeRepo, "out-1", "user-1")

	_, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})

	assert.ErrorIs(t, err, shared.ErrGeneration)
	assert.Empty(t, sessionRepo.sessions)

	remaining, _ := outcomeRepo.CountUnprocessed(context.Background(), "user-1")
	assert.Equal(t, 1, remaining, "a failed generation must keep the batch eligible")
}

func TestGenerateSession_PersistFailurePropagates(t *testing.T) {
	gen := &fakeGenerator{sessionResp: &session.GeneratorResponse{Topic: "Fractions"}}
	h, _, outcomeRepo, sessionRepo, _ := newGenerateSessionHandler(gen)
	sessionRepo.saveErr = errors.New("connection reset")
	seedPendingOutcome(outcomeRepo, "out-1", "user-1")

	_, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})

	assert.Error(t, err)
	remaining, _ := outcomeRepo.CountUnprocessed(context.Background(), "user-1")
	assert.Equal(t, 1, remaining)
}

func TestGenerateSession_SkipsEmptyTaskContent(t *testing.T) {
	gen := &fakeGenerator{sessionResp: &session.GeneratorResponse{
		Topic: "Fractions",
		Tasks: []session.GeneratedTask{
			{AppID: "math-basic", Content: json.RawMessage(`null`)},
			{AppID: "math-basic", Content: json.RawMessage(`""`)},
			{AppID: "math-basic", Content: json.RawMessage(`{"question":"real"}`)},
		},
	}}
	h, _, outcomeRepo, _, _ := newGenerateSessionHandler(gen)
	seedPendingOutcome(outcomeRepo, "out-1", "user-1")

	result, err := h.Handle(context.Background(), GenerateSessionCommand{UserID: "user-1"})

	require.NoError(t, err)
	require.Len(t, result.Session.Tasks, 1)
}
