package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/pkg/observability"
)

// UpdateSessionStatusCommand marks a session of the latest plan as pending,
// done, or skipped.
type UpdateSessionStatusCommand struct {
	OwnerID   uuid.UUID
	SessionID string
	Status    domain.SessionStatus
}

// ErrInvalidStatus rejects status values outside the session lifecycle.
var ErrInvalidStatus = fmt.Errorf("status must be one of pending, done, skipped")

// UpdateSessionStatusHandler applies status transitions against the latest
// plan only; older plan versions are never touched.
type UpdateSessionStatusHandler struct {
	plans   domain.PlanRepository
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewUpdateSessionStatusHandler creates the handler.
func NewUpdateSessionStatusHandler(plans domain.PlanRepository, logger *slog.Logger) *UpdateSessionStatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateSessionStatusHandler{plans: plans, logger: logger, metrics: observability.NoopMetrics{}}
}

// WithMetrics attaches a metrics sink. The default is a no-op.
func (h *UpdateSessionStatusHandler) WithMetrics(m observability.Metrics) *UpdateSessionStatusHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle validates and applies the transition. Returns
// domain.ErrSessionNotFound when the latest plan has no such session.
func (h *UpdateSessionStatusHandler) Handle(ctx context.Context, cmd UpdateSessionStatusCommand) error {
	if !domain.ValidStatus(cmd.Status) {
		return ErrInvalidStatus
	}
	if err := h.plans.UpdateSessionStatus(ctx, cmd.OwnerID, cmd.SessionID, cmd.Status); err != nil {
		return err
	}

	switch cmd.Status {
	case domain.StatusDone:
		h.metrics.Counter(observability.MetricSessionsDone, 1)
	case domain.StatusSkipped:
		h.metrics.Counter(observability.MetricSessionsSkipped, 1)
	}

	h.logger.Info("session status updated",
		"owner_id", cmd.OwnerID,
		"session_id", cmd.SessionID,
		"status", cmd.Status,
	)
	return nil
}
