package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ISOTime is the single boundary encoding for instants: second precision,
// UTC, trailing Z. The wire JSON, the plan store and the ICS emitter all go
// through it so the pipeline never re-encodes timestamps ad hoc.
type ISOTime time.Time

const isoLayout = "2006-01-02T15:04:05Z"

// NewISOTime truncates t to seconds in UTC.
func NewISOTime(t time.Time) ISOTime {
	return ISOTime(t.UTC().Truncate(time.Second))
}

// Time returns the wrapped instant.
func (t ISOTime) Time() time.Time { return time.Time(t) }

// String formats the instant in the boundary layout.
func (t ISOTime) String() string {
	return time.Time(t).UTC().Format(isoLayout)
}

// MarshalJSON implements json.Marshaler.
func (t ISOTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Accepts any RFC3339 instant,
// with or without an offset.
func (t *ISOTime) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		*t = ISOTime{}
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse(isoLayout, raw)
		if err != nil {
			return fmt.Errorf("parse ISO instant %q: %w", raw, err)
		}
	}
	*t = NewISOTime(parsed)
	return nil
}

// SessionSource tells what a session schedules.
type SessionSource string

const (
	SourceTask  SessionSource = "task"
	SourceHabit SessionSource = "habit"
	SourceBreak SessionSource = "break"
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusPending SessionStatus = "pending"
	StatusDone    SessionStatus = "done"
	StatusSkipped SessionStatus = "skipped"
)

// ValidStatus reports whether s is one of the accepted lifecycle states.
func ValidStatus(s SessionStatus) bool {
	switch s {
	case StatusPending, StatusDone, StatusSkipped:
		return true
	}
	return false
}

// Session is one scheduled atom inside a plan. Field names follow the
// camelCase wire contract.
type Session struct {
	ID              string        `json:"id"`
	Source          SessionSource `json:"source"`
	TaskID          *string       `json:"taskId"`
	HabitID         *string       `json:"habitId"`
	Subject         string        `json:"subject"`
	Title           string        `json:"title"`
	PlannedStart    ISOTime       `json:"plannedStart"`
	PlannedEnd      ISOTime       `json:"plannedEnd"`
	Minutes         int           `json:"minutes"`
	BufferMinutes   int           `json:"bufferMinutes"`
	Status          SessionStatus `json:"status"`
	CompletedAt     *ISOTime      `json:"completedAt"`
	Checklist       []string      `json:"checklist"`
	SuccessCriteria []string      `json:"successCriteria"`
	MilestoneTitle  *string       `json:"milestoneTitle"`
	PlanVersion     int           `json:"planVersion"`
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// IsBreak reports whether the session is a rest period.
func (s Session) IsBreak() bool {
	return s.Source == SourceBreak
}
