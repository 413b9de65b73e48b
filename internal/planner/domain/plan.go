package domain

import (
	"time"

	"github.com/google/uuid"
)

// Suggestion types surfaced alongside a plan.
const (
	SuggestIncreaseFreeTime = "increase_free_time"
	SuggestReduceDuration   = "reduce_duration"
)

// Suggestion is a structured nudge attached to a generated plan.
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// UnscheduledTask is the snapshot of a task the scheduler could not fully fit.
type UnscheduledTask struct {
	ID               string  `json:"id"`
	Subject          string  `json:"subject"`
	Title            string  `json:"title"`
	Deadline         ISOTime `json:"deadline"`
	EstimatedMinutes int     `json:"estimatedMinutes"`
	ProgressMinutes  int     `json:"progressMinutes"`
	ShortfallMinutes int     `json:"shortfallMinutes"`
}

// SnapshotUnscheduled captures the task state at generation time.
func SnapshotUnscheduled(t Task, shortfall int) UnscheduledTask {
	return UnscheduledTask{
		ID:               t.ID.String(),
		Subject:          t.Subject,
		Title:            t.Title,
		Deadline:         NewISOTime(t.Deadline),
		EstimatedMinutes: t.EstimatedMinutes,
		ProgressMinutes:  t.ProgressMinutes,
		ShortfallMinutes: shortfall,
	}
}

// PlanRecord is the immutable output of one rebuild. Only session statuses
// mutate after generation; everything else is frozen.
type PlanRecord struct {
	ID               string            `json:"id"`
	PlanVersion      int               `json:"planVersion"`
	Sessions         []Session         `json:"sessions"`
	UnscheduledTasks []UnscheduledTask `json:"unscheduledTasks"`
	Suggestions      []Suggestion      `json:"suggestions"`
	GeneratedAt      ISOTime           `json:"generatedAt"`

	OwnerID   uuid.UUID `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// FindSession returns the index of the session with the given id, or -1.
func (p *PlanRecord) FindSession(sessionID string) int {
	for i := range p.Sessions {
		if p.Sessions[i].ID == sessionID {
			return i
		}
	}
	return -1
}

// FocusSessions returns the non-break sessions in order.
func (p *PlanRecord) FocusSessions() []Session {
	out := make([]Session, 0, len(p.Sessions))
	for _, s := range p.Sessions {
		if !s.IsBreak() {
			out = append(out, s)
		}
	}
	return out
}
