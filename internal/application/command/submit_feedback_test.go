package command

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

func TestSubmitFeedback_Persists(t *testing.T) {
	repo := &fakeFeedbackRepo{}
	publisher := &capturingPublisher{}
	h := NewSubmitFeedbackHandler(repo, publisher)

	err := h.Handle(context.Background(), SubmitFeedbackCommand{
		UserID:  "user-1",
		Message: "the fraction tasks are too easy",
	})

	require.NoError(t, err)
	require.Len(t, repo.submissions, 1)
	assert.Equal(t, "user-1", repo.submissions[0].UserID)
	assert.NotEmpty(t, repo.submissions[0].ID)
	assert.Contains(t, publisher.typesSeen(), shared.EventFeedbackSubmitted)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	h := NewSubmitFeedbackHandler(&fakeFeedbackRepo{}, nil)
	ctx := context.Background()

	err := h.Handle(ctx, SubmitFeedbackCommand{Message: "hello"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	err = h.Handle(ctx, SubmitFeedbackCommand{UserID: "user-1"})
	assert.ErrorIs(t, err, shared.ErrValidation)

	err = h.Handle(ctx, SubmitFeedbackCommand{UserID: "user-1", Message: strings.Repeat("x", 5001)})
	assert.ErrorIs(t, err, shared.ErrValidation)
}
