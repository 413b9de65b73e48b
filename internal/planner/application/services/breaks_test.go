package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

func focusSession(start time.Time, minutes int) domain.Session {
	return domain.Session{
		ID:           domain.NewSessionID(),
		Source:       domain.SourceTask,
		Subject:      "Math",
		Title:        "Focus",
		PlannedStart: domain.NewISOTime(start),
		PlannedEnd:   domain.NewISOTime(start.Add(time.Duration(minutes) * time.Minute)),
		Minutes:      minutes,
		Status:       domain.StatusPending,
	}
}

func TestInterleaveBreaks_ShiftsLaterSessions(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		focusSession(base, 45),
		focusSession(base.Add(45*time.Minute), 45),
		focusSession(base.Add(90*time.Minute), 45),
	}
	preset := domain.BreakPreset{Focus: 45, Rest: 10, Label: "Deep work 45/10"}

	out := InterleaveBreaks(sessions, preset, 1, time.UTC)

	// Three focus blocks, two extended 15-minute rests between them.
	require.Len(t, out, 5)

	starts := make([]string, len(out))
	for i, s := range out {
		starts[i] = s.PlannedStart.String()
	}
	assert.Equal(t, []string{
		"2025-03-10T08:00:00Z",
		"2025-03-10T08:45:00Z",
		"2025-03-10T09:00:00Z",
		"2025-03-10T09:45:00Z",
		"2025-03-10T10:00:00Z",
	}, starts)

	assert.True(t, out[1].IsBreak())
	assert.Equal(t, 15, out[1].Minutes)
	assert.True(t, out[3].IsBreak())
	assert.Equal(t, "2025-03-10T10:45:00Z", out[4].PlannedEnd.String())
}

func TestInterleaveBreaks_LightLoadKeepsBaseRest(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		focusSession(base, 30),
		focusSession(base.Add(30*time.Minute), 30),
	}
	preset := domain.BreakPreset{Focus: 45, Rest: 10}

	out := InterleaveBreaks(sessions, preset, 1, time.UTC)

	require.Len(t, out, 3)
	assert.True(t, out[1].IsBreak())
	assert.Equal(t, 10, out[1].Minutes)
}

func TestInterleaveBreaks_LargeGapNeedsNoRest(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		focusSession(base, 45),
		focusSession(base.Add(2*time.Hour), 45),
	}
	preset := domain.BreakPreset{Focus: 45, Rest: 10}

	out := InterleaveBreaks(sessions, preset, 1, time.UTC)

	require.Len(t, out, 2)
	assert.Equal(t, sessions[0].PlannedStart, out[0].PlannedStart)
	assert.Equal(t, sessions[1].PlannedStart, out[1].PlannedStart)
}

func TestInterleaveBreaks_ZeroRestPreset(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		focusSession(base, 30),
		focusSession(base.Add(30*time.Minute), 30),
	}

	out := InterleaveBreaks(sessions, domain.BreakPreset{Focus: 45, Rest: 0}, 1, time.UTC)
	require.Len(t, out, 2)
	for _, s := range out {
		assert.False(t, s.IsBreak())
	}
}

func TestInterleaveBreaks_DaysShiftIndependently(t *testing.T) {
	monday := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	tuesday := time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC)
	sessions := []domain.Session{
		focusSession(monday, 45),
		focusSession(monday.Add(45*time.Minute), 45),
		focusSession(tuesday, 30),
	}
	preset := domain.BreakPreset{Focus: 45, Rest: 10}

	out := InterleaveBreaks(sessions, preset, 1, time.UTC)

	require.Len(t, out, 4)
	// Tuesday's lone session is untouched by Monday's accumulated rest.
	last := out[len(out)-1]
	assert.Equal(t, "2025-03-11T08:00:00Z", last.PlannedStart.String())
}

func TestInterleaveBreaks_Empty(t *testing.T) {
	out := InterleaveBreaks(nil, domain.BreakPreset{Focus: 45, Rest: 10}, 1, time.UTC)
	// Non-nil so the plan's session list serializes as [] rather than null.
	require.NotNil(t, out)
	assert.Empty(t, out)
}
