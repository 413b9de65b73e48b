package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/application/services"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/eventbus"
	"github.com/studyflowhq/studyflow/pkg/observability"
)

// PlanRebuiltRoutingKey is the event published after a successful rebuild.
const PlanRebuiltRoutingKey = "plan.rebuilt"

// RebuildPlanCommand requests a full plan rebuild for one owner.
type RebuildPlanCommand struct {
	OwnerID uuid.UUID
	Now     time.Time
}

// PlanRebuiltEvent is the payload published on PlanRebuiltRoutingKey.
type PlanRebuiltEvent struct {
	EventID      string `json:"eventId"`
	OwnerID      string `json:"ownerId"`
	PlanVersion  int    `json:"planVersion"`
	SessionCount int    `json:"sessionCount"`
	GeneratedAt  string `json:"generatedAt"`
}

// RebuildPlanHandler orchestrates one rebuild: read inputs, tune settings
// from feedback, generate, persist, announce.
type RebuildPlanHandler struct {
	tasks     domain.TaskRepository
	habits    domain.HabitRepository
	slots     domain.SlotRepository
	settings  domain.SettingsRepository
	feedback  domain.FeedbackRepository
	plans     domain.PlanRepository
	generator *services.Generator
	publisher eventbus.Publisher
	logger    *slog.Logger
	metrics   observability.Metrics
}

// NewRebuildPlanHandler creates the handler.
func NewRebuildPlanHandler(
	tasks domain.TaskRepository,
	habits domain.HabitRepository,
	slots domain.SlotRepository,
	settings domain.SettingsRepository,
	feedback domain.FeedbackRepository,
	plans domain.PlanRepository,
	generator *services.Generator,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *RebuildPlanHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NoopPublisher{}
	}
	return &RebuildPlanHandler{
		tasks:     tasks,
		habits:    habits,
		slots:     slots,
		settings:  settings,
		feedback:  feedback,
		plans:     plans,
		generator: generator,
		publisher: publisher,
		logger:    logger,
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics attaches a metrics sink. The default is a no-op.
func (h *RebuildPlanHandler) WithMetrics(m observability.Metrics) *RebuildPlanHandler {
	if m != nil {
		h.metrics = m
	}
	return h
}

// Handle runs the rebuild. Scheduling shortfalls are not errors; only read or
// persistence failures surface here.
func (h *RebuildPlanHandler) Handle(ctx context.Context, cmd RebuildPlanCommand) (*domain.PlanRecord, error) {
	return observability.TimeOperationResult(ctx, nil, h.metrics, "plan.rebuild", func() (*domain.PlanRecord, error) {
		return h.rebuild(ctx, cmd)
	})
}

func (h *RebuildPlanHandler) rebuild(ctx context.Context, cmd RebuildPlanCommand) (*domain.PlanRecord, error) {
	now := cmd.Now
	if now.IsZero() {
		now = time.Now()
	}

	tasks, err := h.tasks.ListTasks(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	slots, err := h.slots.ListSlots(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	habits, err := h.habits.ListHabits(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	settings, err := h.settings.GetSettings(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	feedback, err := h.feedback.ListFeedback(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	previousVersion := 0
	if latest, err := h.plans.GetLatest(ctx, cmd.OwnerID); err == nil {
		previousVersion = latest.PlanVersion
	} else if !errors.Is(err, domain.ErrPlanNotFound) {
		return nil, fmt.Errorf("get latest plan: %w", err)
	}

	plan := h.generator.Generate(services.GenerateInput{
		Owner:       cmd.OwnerID,
		Tasks:       tasks,
		Slots:       slots,
		Habits:      habits,
		Settings:    services.EffectiveSettings(settings, feedback),
		Now:         now,
		PlanVersion: previousVersion + 1,
	})

	if err := h.plans.Save(ctx, plan); err != nil {
		return nil, fmt.Errorf("save plan: %w", err)
	}

	h.publish(ctx, plan)

	h.metrics.Counter(observability.MetricPlansRebuilt, 1)
	h.metrics.Counter(observability.MetricSessionsScheduled, int64(len(plan.Sessions)))
	h.metrics.Counter(observability.MetricTasksUnscheduled, int64(len(plan.UnscheduledTasks)))

	h.logger.Info("plan rebuilt",
		"owner_id", cmd.OwnerID,
		"plan_version", plan.PlanVersion,
		"sessions", len(plan.Sessions),
		"unscheduled", len(plan.UnscheduledTasks),
	)
	return plan, nil
}

// publish announces the rebuild; delivery is best-effort and never fails the
// command.
func (h *RebuildPlanHandler) publish(ctx context.Context, plan *domain.PlanRecord) {
	payload, err := json.Marshal(PlanRebuiltEvent{
		EventID:      uuid.NewString(),
		OwnerID:      plan.OwnerID.String(),
		PlanVersion:  plan.PlanVersion,
		SessionCount: len(plan.Sessions),
		GeneratedAt:  plan.GeneratedAt.String(),
	})
	if err != nil {
		return
	}
	if err := h.publisher.Publish(ctx, PlanRebuiltRoutingKey, payload); err != nil {
		h.logger.Warn("plan.rebuilt publish failed", "error", err)
	}
}
