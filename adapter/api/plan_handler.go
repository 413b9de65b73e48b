package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/application/commands"
	"github.com/studyflowhq/studyflow/internal/planner/application/queries"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// OwnerHeader carries the acting owner's UUID. Requests without it fall back
// to the handler's default owner (single-user deployments).
const OwnerHeader = "X-Owner-ID"

// PlanHandler handles the plan lifecycle routes.
type PlanHandler struct {
	rebuild      *commands.RebuildPlanHandler
	updateStatus *commands.UpdateSessionStatusHandler
	getPlan      *queries.GetPlanHandler
	exportICS    *queries.ExportICSHandler
	tasks        domain.TaskRepository
	slots        domain.SlotRepository
	defaultOwner uuid.UUID
	logger       *slog.Logger
}

// PlanHandlerConfig holds dependencies for the plan handler.
type PlanHandlerConfig struct {
	Rebuild      *commands.RebuildPlanHandler
	UpdateStatus *commands.UpdateSessionStatusHandler
	GetPlan      *queries.GetPlanHandler
	ExportICS    *queries.ExportICSHandler
	Tasks        domain.TaskRepository
	Slots        domain.SlotRepository
	DefaultOwner uuid.UUID
	Logger       *slog.Logger
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(cfg PlanHandlerConfig) *PlanHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &PlanHandler{
		rebuild:      cfg.Rebuild,
		updateStatus: cfg.UpdateStatus,
		getPlan:      cfg.GetPlan,
		exportICS:    cfg.ExportICS,
		tasks:        cfg.Tasks,
		slots:        cfg.Slots,
		defaultOwner: cfg.DefaultOwner,
		logger:       cfg.Logger,
	}
}

func (h *PlanHandler) owner(r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get(OwnerHeader)
	if raw == "" {
		return h.defaultOwner, true
	}
	owner, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return owner, true
}

// Latest handles GET /plan/latest
func (h *PlanHandler) Latest(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid owner id")
		return
	}

	plan, err := h.getPlan.Latest(r.Context(), owner)
	if errors.Is(err, domain.ErrPlanNotFound) {
		writeError(w, http.StatusNotFound, "No plan yet")
		return
	}
	if err != nil {
		h.logger.Error("failed to load latest plan", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load plan")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// History handles GET /plan/history?limit=N
func (h *PlanHandler) History(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid owner id")
		return
	}

	// Zero means "no limit given"; the query handler applies the default.
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	plans, err := h.getPlan.History(r.Context(), owner, limit)
	if err != nil {
		h.logger.Error("failed to load plan history", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load plan history")
		return
	}
	if plans == nil {
		plans = []*domain.PlanRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"plans": plans})
}

// Rebuild handles POST /plan/rebuild
func (h *PlanHandler) Rebuild(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid owner id")
		return
	}

	tasks, err := h.tasks.ListTasks(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to list tasks", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to rebuild plan")
		return
	}
	slots, err := h.slots.ListSlots(r.Context(), owner)
	if err != nil {
		h.logger.Error("failed to list slots", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to rebuild plan")
		return
	}
	if len(tasks) == 0 && len(slots) == 0 {
		writeError(w, http.StatusBadRequest, "Nothing to plan: add tasks or free slots first")
		return
	}

	plan, err := h.rebuild.Handle(r.Context(), commands.RebuildPlanCommand{OwnerID: owner})
	if err != nil {
		h.logger.Error("plan rebuild failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to rebuild plan")
		return
	}

	writeJSON(w, http.StatusOK, plan)
}

// UpdateSessionStatus handles PATCH /plan/sessions/{sessionID}/status
func (h *PlanHandler) UpdateSessionStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid owner id")
		return
	}

	sessionID := r.PathValue("sessionID")

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	err := h.updateStatus.Handle(r.Context(), commands.UpdateSessionStatusCommand{
		OwnerID:   owner,
		SessionID: sessionID,
		Status:    domain.SessionStatus(body.Status),
	})
	switch {
	case errors.Is(err, commands.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "Session not found in latest plan")
	case err != nil:
		h.logger.Error("session status update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update session")
	default:
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// ExportICS handles GET /plan/export/ics
func (h *PlanHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
	owner, ok := h.owner(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid owner id")
		return
	}

	calendar, err := h.exportICS.Handle(r.Context(), owner)
	if errors.Is(err, domain.ErrPlanNotFound) {
		writeError(w, http.StatusNotFound, "No plan yet")
		return
	}
	if err != nil {
		h.logger.Error("ICS export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to export calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="studyflow.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(calendar))
}
