package queries

import (
	"context"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// GetPlanHandler serves the latest plan and the version history.
type GetPlanHandler struct {
	plans domain.PlanRepository
}

// NewGetPlanHandler creates the handler.
func NewGetPlanHandler(plans domain.PlanRepository) *GetPlanHandler {
	return &GetPlanHandler{plans: plans}
}

// Latest returns the owner's newest plan, or domain.ErrPlanNotFound.
func (h *GetPlanHandler) Latest(ctx context.Context, owner uuid.UUID) (*domain.PlanRecord, error) {
	return h.plans.GetLatest(ctx, owner)
}

// History returns up to limit plans, newest first. A non-positive limit
// falls back to 10.
func (h *GetPlanHandler) History(ctx context.Context, owner uuid.UUID, limit int) ([]*domain.PlanRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	return h.plans.ListPlans(ctx, owner, limit)
}
