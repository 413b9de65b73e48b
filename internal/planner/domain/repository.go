package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrSessionNotFound = errors.New("session not found in latest plan")
)

// TaskRepository reads the owner's tasks.
type TaskRepository interface {
	ListTasks(ctx context.Context, owner uuid.UUID) ([]Task, error)
}

// HabitRepository reads the owner's habits in declaration order.
type HabitRepository interface {
	ListHabits(ctx context.Context, owner uuid.UUID) ([]Habit, error)
}

// SlotRepository reads the owner's weekly free-slot pattern.
type SlotRepository interface {
	ListSlots(ctx context.Context, owner uuid.UUID) ([]FreeSlot, error)
}

// SettingsRepository reads the owner's planner configuration, falling back to
// defaults when the owner never saved any.
type SettingsRepository interface {
	GetSettings(ctx context.Context, owner uuid.UUID) (Settings, error)
}

// FeedbackRepository reads the owner's feedback, ascending by submission time.
type FeedbackRepository interface {
	ListFeedback(ctx context.Context, owner uuid.UUID) ([]Feedback, error)
}

// PlanRepository persists plan records per owner.
type PlanRepository interface {
	// GetLatest returns the most recent plan or ErrPlanNotFound.
	GetLatest(ctx context.Context, owner uuid.UUID) (*PlanRecord, error)

	// ListPlans returns up to limit plans, newest first.
	ListPlans(ctx context.Context, owner uuid.UUID, limit int) ([]*PlanRecord, error)

	// Save persists the plan, assigning the owner's next plan version under a
	// single transaction. The assigned version is written back into the record
	// and its sessions.
	Save(ctx context.Context, plan *PlanRecord) error

	// UpdateSessionStatus mutates one session of the latest plan. Returns
	// ErrSessionNotFound when the latest plan does not contain the session.
	UpdateSessionStatus(ctx context.Context, owner uuid.UUID, sessionID string, status SessionStatus) error

	// RemoveTaskFromPlans strips every session and unscheduled entry
	// referencing the task from all stored plans of the owner.
	RemoveTaskFromPlans(ctx context.Context, owner uuid.UUID, taskID string) error

	// RemoveHabitFromPlans strips every session referencing the habit from
	// all stored plans of the owner.
	RemoveHabitFromPlans(ctx context.Context, owner uuid.UUID, habitID string) error
}
