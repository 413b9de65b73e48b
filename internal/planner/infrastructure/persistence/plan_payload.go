package persistence

import (
	"time"

	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// assignVersion stamps the plan and all its sessions with the version chosen
// by the store.
func assignVersion(plan *domain.PlanRecord, version int) {
	plan.PlanVersion = version
	for i := range plan.Sessions {
		plan.Sessions[i].PlanVersion = version
	}
}

// applyStatus mutates the session in place. Marking done stamps completedAt;
// any other transition clears it. Returns false when the session is absent.
func applyStatus(sessions []domain.Session, sessionID string, status domain.SessionStatus) bool {
	for i := range sessions {
		if sessions[i].ID != sessionID {
			continue
		}
		sessions[i].Status = status
		if status == domain.StatusDone {
			now := domain.NewISOTime(time.Now())
			sessions[i].CompletedAt = &now
		} else {
			sessions[i].CompletedAt = nil
		}
		return true
	}
	return false
}

// planPayload is the mutable JSON portion of a stored plan row that cascade
// removals rewrite.
type planPayload struct {
	Sessions         []domain.Session
	UnscheduledTasks []domain.UnscheduledTask
}

func decodePlanPayload(rawSessions, rawUnscheduled []byte) (planPayload, error) {
	sessions, err := decodeSessions(rawSessions)
	if err != nil {
		return planPayload{}, err
	}
	unscheduled, err := decodeUnscheduled(rawUnscheduled)
	if err != nil {
		return planPayload{}, err
	}
	return planPayload{Sessions: sessions, UnscheduledTasks: unscheduled}, nil
}

func (p *planPayload) encode() (sessions, unscheduled []byte, err error) {
	sessions, err = encodeSessions(p.Sessions)
	if err != nil {
		return nil, nil, err
	}
	unscheduled, err = encodeUnscheduled(p.UnscheduledTasks)
	if err != nil {
		return nil, nil, err
	}
	return sessions, unscheduled, nil
}

// removeTask drops the task's sessions and unscheduled entries. Reports
// whether anything changed.
func (p *planPayload) removeTask(taskID string) bool {
	changed := false

	kept := p.Sessions[:0]
	for _, s := range p.Sessions {
		if s.TaskID != nil && *s.TaskID == taskID {
			changed = true
			continue
		}
		kept = append(kept, s)
	}
	p.Sessions = kept

	keptUnscheduled := p.UnscheduledTasks[:0]
	for _, u := range p.UnscheduledTasks {
		if u.ID == taskID {
			changed = true
			continue
		}
		keptUnscheduled = append(keptUnscheduled, u)
	}
	p.UnscheduledTasks = keptUnscheduled

	return changed
}

// removeHabit drops the habit's sessions. Reports whether anything changed.
func (p *planPayload) removeHabit(habitID string) bool {
	changed := false
	kept := p.Sessions[:0]
	for _, s := range p.Sessions {
		if s.HabitID != nil && *s.HabitID == habitID {
			changed = true
			continue
		}
		kept = append(kept, s)
	}
	p.Sessions = kept
	return changed
}
