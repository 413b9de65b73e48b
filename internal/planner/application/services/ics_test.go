package services

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

func icsFixture() *domain.PlanRecord {
	start := time.Date(2025, 3, 15, 1, 0, 0, 0, time.UTC)
	taskID := uuid.NewString()
	return &domain.PlanRecord{
		ID:          uuid.NewString(),
		OwnerID:     uuid.New(),
		PlanVersion: 1,
		GeneratedAt: domain.NewISOTime(time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)),
		Sessions: []domain.Session{
			{
				ID:              "sess-1",
				Source:          domain.SourceTask,
				TaskID:          &taskID,
				Subject:         "Math",
				Title:           "Integration",
				PlannedStart:    domain.NewISOTime(start),
				PlannedEnd:      domain.NewISOTime(start.Add(45 * time.Minute)),
				Minutes:         45,
				Status:          domain.StatusPending,
				SuccessCriteria: []string{"Solve 10 problems", "Review mistakes"},
			},
			{
				ID:           "sess-2",
				Source:       domain.SourceBreak,
				Subject:      "Break",
				Title:        "Deep work 45/10",
				PlannedStart: domain.NewISOTime(start.Add(45 * time.Minute)),
				PlannedEnd:   domain.NewISOTime(start.Add(60 * time.Minute)),
				Minutes:      15,
				Status:       domain.StatusPending,
			},
		},
	}
}

func TestEncodeICS_FocusSessionsOnly(t *testing.T) {
	out := EncodeICS(icsFixture())

	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
	assert.Equal(t, 1, strings.Count(out, "END:VEVENT"))
	assert.NotContains(t, out, "Deep work 45/10")
}

func TestEncodeICS_TimesInUTC(t *testing.T) {
	out := EncodeICS(icsFixture())

	assert.Contains(t, out, "DTSTART:20250315T010000Z\r\n")
	assert.Contains(t, out, "DTEND:20250315T014500Z\r\n")
	assert.Contains(t, out, "DTSTAMP:20250314T120000Z\r\n")
}

func TestEncodeICS_Envelope(t *testing.T) {
	out := EncodeICS(icsFixture())

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Contains(t, out, "VERSION:2.0\r\n")
	assert.Contains(t, out, "PRODID:-//StudyFlow//Planner 1.0//VI\r\n")

	// Every line is CRLF-terminated; no bare newlines sneak in.
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.NotContains(t, line, "\n")
	}
}

func TestEncodeICS_EventFields(t *testing.T) {
	out := EncodeICS(icsFixture())

	assert.Contains(t, out, "UID:sess-1@studyflow\r\n")
	assert.Contains(t, out, "SUMMARY:Math · Integration\r\n")
	assert.Contains(t, out, "DESCRIPTION:Solve 10 problems • Review mistakes\r\n")
	assert.Contains(t, out, "CATEGORIES:Math\r\n")
	assert.Contains(t, out, "COLOR:"+SubjectColor("Math")+"\r\n")
}

func TestEncodeICS_Deterministic(t *testing.T) {
	plan := icsFixture()
	assert.Equal(t, EncodeICS(plan), EncodeICS(plan))
}

func TestSubjectColor_StablePerSubject(t *testing.T) {
	require.Equal(t, SubjectColor("Math"), SubjectColor("Math"))
	assert.Contains(t, eventPalette, SubjectColor("History"))
}
