package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MinMilestoneMinutes is the smallest sub-allocation a milestone may declare.
const MinMilestoneMinutes = 5

// Milestone is an ordered sub-allocation of a task's effort.
type Milestone struct {
	Title           string `json:"title"`
	MinutesEstimate int    `json:"minutesEstimate"`
}

// Task is a unit of study work with a deadline and an effort estimate.
type Task struct {
	ID               uuid.UUID
	OwnerID          uuid.UUID
	Subject          string
	Title            string
	Deadline         time.Time
	Timezone         string
	Difficulty       int // 1..5
	Importance       int // 1..3, 0 when unset
	EstimatedMinutes int
	ProgressMinutes  int
	SuccessCriteria  []string
	ContentFocus     string
	Milestones       []Milestone
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RemainingMinutes is the effort still owed for the task.
func (t Task) RemainingMinutes() int {
	remaining := t.EstimatedMinutes - t.ProgressMinutes
	if remaining < 0 {
		return 0
	}
	return remaining
}

// BaseCriteria returns the task's success criteria, defaulting to a single
// generic entry when none are declared.
func (t Task) BaseCriteria() []string {
	if len(t.SuccessCriteria) > 0 {
		return t.SuccessCriteria
	}
	return []string{"Complete session"}
}

// Checklist splits the free-form content focus into checklist items, one per
// non-empty line. Returns nil when there is nothing to check off.
func (t Task) Checklist() []string {
	if t.ContentFocus == "" {
		return nil
	}
	var items []string
	for _, line := range strings.Split(t.ContentFocus, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// SortTasksByPriority orders the queue for the scheduler: earliest deadline
// first, then higher importance, higher difficulty, larger estimate. The sort
// is stable so equal tasks keep their declaration order.
func SortTasksByPriority(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.Deadline.Equal(b.Deadline) {
			return a.Deadline.Before(b.Deadline)
		}
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if a.Difficulty != b.Difficulty {
			return a.Difficulty > b.Difficulty
		}
		return a.EstimatedMinutes > b.EstimatedMinutes
	})
}
