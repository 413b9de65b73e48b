package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/application/queries"
)

// MetricsHandler handles the metrics routes.
type MetricsHandler struct {
	planMetrics  *queries.PlanMetricsHandler
	defaultOwner uuid.UUID
	logger       *slog.Logger
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(planMetrics *queries.PlanMetricsHandler, defaultOwner uuid.UUID, logger *slog.Logger) *MetricsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsHandler{planMetrics: planMetrics, defaultOwner: defaultOwner, logger: logger}
}

// PlanMetrics handles GET /metrics/plan?range=day|week|month&date=YYYY-MM-DD
func (h *MetricsHandler) PlanMetrics(w http.ResponseWriter, r *http.Request) {
	owner := h.defaultOwner
	if raw := r.Header.Get(OwnerHeader); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid owner id")
			return
		}
		owner = parsed
	}

	metrics, err := h.planMetrics.Handle(r.Context(), queries.PlanMetricsQuery{
		OwnerID:    owner,
		RangeKey:   r.URL.Query().Get("range"),
		AnchorDate: r.URL.Query().Get("date"),
	})
	if errors.Is(err, queries.ErrInvalidRange) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("failed to compute plan metrics", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to compute metrics")
		return
	}

	writeJSON(w, http.StatusOK, metrics)
}
