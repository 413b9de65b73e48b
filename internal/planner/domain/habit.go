package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cadence is how often a habit recurs.
type Cadence string

const (
	CadenceDaily  Cadence = "daily"
	CadenceWeekly Cadence = "weekly"
)

// Habit is a recurring practice scheduled alongside tasks. Weekday is only
// meaningful for weekly cadence (Sunday=0); PreferredStart and EnergyWindow
// are advisory metadata the allocator does not consume.
type Habit struct {
	ID             uuid.UUID
	OwnerID        uuid.UUID
	Name           string
	Cadence        Cadence
	Weekday        *int
	Minutes        int
	Preset         string
	PreferredStart string
	EnergyWindow   string
	CreatedAt      time.Time
}

// EligibleOn reports whether the habit should run on the given weekday
// (Sunday=0).
func (h Habit) EligibleOn(weekday int) bool {
	if h.Cadence == CadenceDaily {
		return true
	}
	return h.Weekday != nil && *h.Weekday == weekday
}
