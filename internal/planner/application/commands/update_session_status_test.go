package commands

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

func seededPlan(t *testing.T, plans *memPlanRepo, owner uuid.UUID, sessions ...domain.Session) *domain.PlanRecord {
	t.Helper()
	plan := &domain.PlanRecord{
		OwnerID:     owner,
		Sessions:    sessions,
		GeneratedAt: domain.NewISOTime(mondayMorning),
	}
	require.NoError(t, plans.Save(context.Background(), plan))
	return plan
}

func pendingSession(id string) domain.Session {
	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	return domain.Session{
		ID:           id,
		Source:       domain.SourceTask,
		Subject:      "Math",
		Title:        "Integration",
		PlannedStart: domain.NewISOTime(start),
		PlannedEnd:   domain.NewISOTime(start.Add(45 * time.Minute)),
		Minutes:      45,
		Status:       domain.StatusPending,
	}
}

func TestUpdateSessionStatus_RejectsUnknownStatus(t *testing.T) {
	handler := NewUpdateSessionStatusHandler(&memPlanRepo{}, nil)

	err := handler.Handle(context.Background(), UpdateSessionStatusCommand{
		OwnerID:   uuid.New(),
		SessionID: "s1",
		Status:    domain.SessionStatus("paused"),
	})

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateSessionStatus_MarksDone(t *testing.T) {
	owner := uuid.New()
	plans := &memPlanRepo{}
	seededPlan(t, plans, owner, pendingSession("s1"))
	handler := NewUpdateSessionStatusHandler(plans, nil)

	err := handler.Handle(context.Background(), UpdateSessionStatusCommand{
		OwnerID:   owner,
		SessionID: "s1",
		Status:    domain.StatusDone,
	})
	require.NoError(t, err)

	latest, err := plans.GetLatest(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDone, latest.Sessions[0].Status)
}

func TestUpdateSessionStatus_UnknownSession(t *testing.T) {
	owner := uuid.New()
	plans := &memPlanRepo{}
	seededPlan(t, plans, owner, pendingSession("s1"))
	handler := NewUpdateSessionStatusHandler(plans, nil)

	err := handler.Handle(context.Background(), UpdateSessionStatusCommand{
		OwnerID:   owner,
		SessionID: "missing",
		Status:    domain.StatusSkipped,
	})

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
