package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdstettler/learnapp-sub001/internal/domain/session"
	"github.com/rdstettler/learnapp-sub001/internal/domain/shared"
)

func TestGetActivePlan_ReturnsPlan(t *testing.T) {
	repo := &fakeSessionRepo{activePlan: &session.Plan{
		ID:     "plan-1",
		UserID: "user-1",
		Status: session.PlanActive,
		Days: []*session.PlanDay{
			{Day: 1, Focus: "addition"},
		},
	}}
	h := NewGetActivePlanHandler(repo)

	plan, err := h.Handle(context.Background(), GetActivePlanQuery{UserID: "user-1"})

	require.NoError(t, err)
	assert.Equal(t, "plan-1", plan.ID)
	assert.Len(t, plan.Days, 1)
}

func TestGetActivePlan_NoneActive(t *testing.T) {
	h := NewGetActivePlanHandler(&fakeSessionRepo{})

	_, err := h.Handle(context.Background(), GetActivePlanQuery{UserID: "user-1"})

	assert.ErrorIs(t, err, shared.ErrNoActivePlan)
}
