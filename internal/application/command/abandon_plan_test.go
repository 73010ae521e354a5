package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

func TestAbandonPlan_TransitionsActivePlan(t *testing.T) {
	sessionRepo := &fakeSessionRepo{}
	sessionRepo.plans = append(sessionRepo.plans, &session.Plan{
		ID: "plan-1", UserID: "user-1", Status: session.PlanActive,
	})
	publisher := &capturingPublisher{}
	h := NewAbandonPlanHandler(sessionRepo, publisher)

	err := h.Handle(context.Background(), AbandonPlanCommand{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, session.PlanAbandoned, sessionRepo.plans[0].Status)
	assert.Contains(t, publisher.typesSeen(), shared.EventPlanAbandoned)
}

func TestAbandonPlan_NoActivePlan(t *testing.T) {
	h := NewAbandonPlanHandler(&fakeSessionRepo{}, nil)

	err := h.Handle(context.Background(), AbandonPlanCommand{UserID: "user-1"})

	assert.ErrorIs(t, err, shared.ErrNoActivePlan)
}

func TestAbandonPlan_Validation(t *testing.T) {
	h := NewAbandonPlanHandler(&fakeSessionRepo{}, nil)

	err := h.Handle(context.Background(), AbandonPlanCommand{})

	assert.ErrorIs(t, err, shared.ErrValidation)
}
