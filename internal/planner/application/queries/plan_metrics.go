package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/application/services"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// PlanMetricsQuery selects the range to report on. AnchorDate is optional
// (YYYY-MM-DD); empty means today in the owner's timezone.
type PlanMetricsQuery struct {
	OwnerID    uuid.UUID
	RangeKey   string
	AnchorDate string
	Now        time.Time
}

// ErrInvalidRange rejects range keys outside day/week/month.
var ErrInvalidRange = fmt.Errorf("range must be one of day, week, month")

// PlanMetricsHandler computes dashboard metrics from the latest plan.
type PlanMetricsHandler struct {
	plans    domain.PlanRepository
	tasks    domain.TaskRepository
	slots    domain.SlotRepository
	settings domain.SettingsRepository
}

// NewPlanMetricsHandler creates the handler.
func NewPlanMetricsHandler(
	plans domain.PlanRepository,
	tasks domain.TaskRepository,
	slots domain.SlotRepository,
	settings domain.SettingsRepository,
) *PlanMetricsHandler {
	return &PlanMetricsHandler{plans: plans, tasks: tasks, slots: slots, settings: settings}
}

// Handle resolves the range and computes the metrics. An owner without a
// plan still gets a payload, with a nil plan version.
func (h *PlanMetricsHandler) Handle(ctx context.Context, q PlanMetricsQuery) (services.PlanMetrics, error) {
	switch q.RangeKey {
	case services.RangeDay, services.RangeWeek, services.RangeMonth:
	case "":
		q.RangeKey = services.RangeWeek
	default:
		return services.PlanMetrics{}, ErrInvalidRange
	}

	now := q.Now
	if now.IsZero() {
		now = time.Now()
	}

	settings, err := h.settings.GetSettings(ctx, q.OwnerID)
	if err != nil {
		return services.PlanMetrics{}, fmt.Errorf("get settings: %w", err)
	}

	var plan *domain.PlanRecord
	if latest, err := h.plans.GetLatest(ctx, q.OwnerID); err == nil {
		plan = latest
	} else if !errors.Is(err, domain.ErrPlanNotFound) {
		return services.PlanMetrics{}, fmt.Errorf("get latest plan: %w", err)
	}

	tasks, err := h.tasks.ListTasks(ctx, q.OwnerID)
	if err != nil {
		return services.PlanMetrics{}, fmt.Errorf("list tasks: %w", err)
	}
	slots, err := h.slots.ListSlots(ctx, q.OwnerID)
	if err != nil {
		return services.PlanMetrics{}, fmt.Errorf("list slots: %w", err)
	}

	return services.ComputePlanMetrics(services.MetricsInput{
		RangeKey:   q.RangeKey,
		AnchorDate: q.AnchorDate,
		Now:        now,
		Plan:       plan,
		Tasks:      tasks,
		Slots:      slots,
		Settings:   settings,
	}), nil
}
