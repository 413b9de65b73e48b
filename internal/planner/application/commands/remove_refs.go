package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/eventbus"
)

// SessionsRemovedRoutingKey is published after a cascade strips sessions.
const SessionsRemovedRoutingKey = "plan.sessions.removed"

// SessionsRemovedEvent is the payload published on SessionsRemovedRoutingKey.
type SessionsRemovedEvent struct {
	EventID     string `json:"eventId"`
	OwnerID     string `json:"ownerId"`
	Source      string `json:"source"`
	ReferenceID string `json:"referenceId"`
}

// RemovePlanRefsHandler cascades task and habit deletions into stored plans.
// The cascade is cheap clean-up, not a rebuild: plans keep their version and
// simply lose the dangling sessions.
type RemovePlanRefsHandler struct {
	plans     domain.PlanRepository
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewRemovePlanRefsHandler creates the handler.
func NewRemovePlanRefsHandler(plans domain.PlanRepository, publisher eventbus.Publisher, logger *slog.Logger) *RemovePlanRefsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NoopPublisher{}
	}
	return &RemovePlanRefsHandler{plans: plans, publisher: publisher, logger: logger}
}

// RemoveTask strips every session and unscheduled entry referencing the task
// from all stored plans of the owner.
func (h *RemovePlanRefsHandler) RemoveTask(ctx context.Context, owner uuid.UUID, taskID string) error {
	if err := h.plans.RemoveTaskFromPlans(ctx, owner, taskID); err != nil {
		return err
	}
	h.announce(ctx, owner, string(domain.SourceTask), taskID)
	return nil
}

// RemoveHabit strips every session referencing the habit from all stored
// plans of the owner.
func (h *RemovePlanRefsHandler) RemoveHabit(ctx context.Context, owner uuid.UUID, habitID string) error {
	if err := h.plans.RemoveHabitFromPlans(ctx, owner, habitID); err != nil {
		return err
	}
	h.announce(ctx, owner, string(domain.SourceHabit), habitID)
	return nil
}

func (h *RemovePlanRefsHandler) announce(ctx context.Context, owner uuid.UUID, source, refID string) {
	payload, err := json.Marshal(SessionsRemovedEvent{
		EventID:     uuid.NewString(),
		OwnerID:     owner.String(),
		Source:      source,
		ReferenceID: refID,
	})
	if err != nil {
		return
	}
	if err := h.publisher.Publish(ctx, SessionsRemovedRoutingKey, payload); err != nil {
		h.logger.Warn("cascade publish failed", "error", err)
	}
}
