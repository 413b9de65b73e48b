package commands

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

func TestRemovePlanRefs_RemoveTask(t *testing.T) {
	owner := uuid.New()
	plans := &memPlanRepo{}
	publisher := newRecordingPublisher()
	handler := NewRemovePlanRefsHandler(plans, publisher, nil)

	doomed := uuid.NewString()
	session := pendingSession("s1")
	session.TaskID = &doomed
	kept := pendingSession("s2")
	seededPlan(t, plans, owner, session, kept)

	require.NoError(t, handler.RemoveTask(context.Background(), owner, doomed))

	latest, err := plans.GetLatest(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, latest.Sessions, 1)
	assert.Equal(t, "s2", latest.Sessions[0].ID)

	events := publisher.published(SessionsRemovedRoutingKey)
	require.Len(t, events, 1)

	var event SessionsRemovedEvent
	require.NoError(t, json.Unmarshal(events[0], &event))
	assert.Equal(t, "task", event.Source)
	assert.Equal(t, doomed, event.ReferenceID)
	assert.Equal(t, owner.String(), event.OwnerID)
}

func TestRemovePlanRefs_RemoveHabit(t *testing.T) {
	owner := uuid.New()
	plans := &memPlanRepo{}
	publisher := newRecordingPublisher()
	handler := NewRemovePlanRefsHandler(plans, publisher, nil)

	habitID := uuid.NewString()
	session := pendingSession("h1")
	session.Source = domain.SourceHabit
	session.HabitID = &habitID
	seededPlan(t, plans, owner, session)

	require.NoError(t, handler.RemoveHabit(context.Background(), owner, habitID))

	latest, err := plans.GetLatest(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, latest.Sessions)

	events := publisher.published(SessionsRemovedRoutingKey)
	require.Len(t, events, 1)

	var event SessionsRemovedEvent
	require.NoError(t, json.Unmarshal(events[0], &event))
	assert.Equal(t, "habit", event.Source)
}

func TestRemovePlanRefs_PublishFailureIsSwallowed(t *testing.T) {
	owner := uuid.New()
	plans := &memPlanRepo{}
	publisher := newRecordingPublisher()
	publisher.failing = true
	handler := NewRemovePlanRefsHandler(plans, publisher, nil)

	assert.NoError(t, handler.RemoveTask(context.Background(), owner, uuid.NewString()))
}
