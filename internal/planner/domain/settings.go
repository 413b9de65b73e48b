package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDailyLimitOutOfRange = errors.New("daily limit must be between 30 and 720 minutes")
	ErrBufferOutOfRange     = errors.New("buffer percent must be between 0.0 and 0.5")
	ErrInvalidBreakPreset   = errors.New("break preset needs focus >= 1 and rest >= 0")
)

// BreakPreset controls the focus/rest rhythm of generated sessions.
type BreakPreset struct {
	Focus int    `json:"focus"`
	Rest  int    `json:"rest"`
	Label string `json:"label"`
}

// Settings is the per-owner planner configuration.
type Settings struct {
	OwnerID           uuid.UUID
	DailyLimitMinutes int
	BufferPercent     float64
	BreakPreset       BreakPreset
	Timezone          string
	LastUpdated       time.Time
}

// DefaultSettings returns the planner configuration used before the owner
// customizes anything.
func DefaultSettings(owner uuid.UUID) Settings {
	return Settings{
		OwnerID:           owner,
		DailyLimitMinutes: 180,
		BufferPercent:     0.15,
		BreakPreset:       BreakPreset{Focus: 45, Rest: 10, Label: "Deep work 45/10"},
		Timezone:          DefaultTimezone,
	}
}

// Validate checks the boundary invariants. The planner itself assumes it is
// never invoked with out-of-range settings.
func (s Settings) Validate() error {
	if s.DailyLimitMinutes < 30 || s.DailyLimitMinutes > 720 {
		return ErrDailyLimitOutOfRange
	}
	if s.BufferPercent < 0 || s.BufferPercent > 0.5 {
		return ErrBufferOutOfRange
	}
	if s.BreakPreset.Focus < 1 || s.BreakPreset.Rest < 0 {
		return ErrInvalidBreakPreset
	}
	return nil
}

// Location resolves the owner's timezone.
func (s Settings) Location() *time.Location {
	return LoadLocation(s.Timezone)
}
