package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/application/services"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// ExportICSHandler renders the latest plan as an iCalendar document.
type ExportICSHandler struct {
	plans domain.PlanRepository
}

// NewExportICSHandler creates the handler.
func NewExportICSHandler(plans domain.PlanRepository) *ExportICSHandler {
	return &ExportICSHandler{plans: plans}
}

// Handle returns the calendar text for the owner's latest plan, or
// domain.ErrPlanNotFound when no plan exists.
func (h *ExportICSHandler) Handle(ctx context.Context, owner uuid.UUID) (string, error) {
	plan, err := h.plans.GetLatest(ctx, owner)
	if err != nil {
		return "", err
	}
	return services.EncodeICS(plan), nil
}
