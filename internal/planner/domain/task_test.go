package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTask_RemainingMinutes(t *testing.T) {
	task := Task{EstimatedMinutes: 120, ProgressMinutes: 45}
	assert.Equal(t, 75, task.RemainingMinutes())

	task.ProgressMinutes = 200
	assert.Equal(t, 0, task.RemainingMinutes())
}

func TestTask_BaseCriteria(t *testing.T) {
	task := Task{}
	assert.Equal(t, []string{"Complete session"}, task.BaseCriteria())

	task.SuccessCriteria = []string{"Solve 10 problems"}
	assert.Equal(t, []string{"Solve 10 problems"}, task.BaseCriteria())
}

func TestTask_Checklist(t *testing.T) {
	task := Task{ContentFocus: "u-substitution\n\n  integration by parts  \n"}
	assert.Equal(t, []string{"u-substitution", "integration by parts"}, task.Checklist())

	assert.Nil(t, Task{}.Checklist())
}

func TestSortTasksByPriority(t *testing.T) {
	early := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC)

	tasks := []Task{
		{Title: "late-small", Deadline: late, Importance: 1, Difficulty: 1, EstimatedMinutes: 30},
		{Title: "late-hard", Deadline: late, Importance: 1, Difficulty: 4, EstimatedMinutes: 30},
		{Title: "early", Deadline: early, Importance: 1, Difficulty: 1, EstimatedMinutes: 30},
		{Title: "late-important", Deadline: late, Importance: 3, Difficulty: 1, EstimatedMinutes: 30},
		{Title: "late-big", Deadline: late, Importance: 1, Difficulty: 4, EstimatedMinutes: 90},
	}

	SortTasksByPriority(tasks)

	titles := make([]string, len(tasks))
	for i, task := range tasks {
		titles[i] = task.Title
	}
	assert.Equal(t, []string{"early", "late-important", "late-big", "late-hard", "late-small"}, titles)
}

func TestSortTasksByPriority_Stable(t *testing.T) {
	deadline := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	tasks := []Task{
		{Title: "first", Deadline: deadline, Importance: 2, Difficulty: 3, EstimatedMinutes: 60},
		{Title: "second", Deadline: deadline, Importance: 2, Difficulty: 3, EstimatedMinutes: 60},
	}

	SortTasksByPriority(tasks)

	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, "second", tasks[1].Title)
}

func TestHabit_EligibleOn(t *testing.T) {
	daily := Habit{Cadence: CadenceDaily}
	for weekday := 0; weekday <= 6; weekday++ {
		assert.True(t, daily.EligibleOn(weekday))
	}

	monday := 1
	weekly := Habit{Cadence: CadenceWeekly, Weekday: &monday}
	assert.True(t, weekly.EligibleOn(1))
	assert.False(t, weekly.EligibleOn(2))

	unpinned := Habit{Cadence: CadenceWeekly}
	assert.False(t, unpinned.EligibleOn(1))
}

func TestSettings_Validate(t *testing.T) {
	owner := uuid.New()
	settings := DefaultSettings(owner)
	require.NoError(t, settings.Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
		err    error
	}{
		{"daily limit too low", func(s *Settings) { s.DailyLimitMinutes = 29 }, ErrDailyLimitOutOfRange},
		{"daily limit too high", func(s *Settings) { s.DailyLimitMinutes = 721 }, ErrDailyLimitOutOfRange},
		{"buffer negative", func(s *Settings) { s.BufferPercent = -0.01 }, ErrBufferOutOfRange},
		{"buffer too high", func(s *Settings) { s.BufferPercent = 0.51 }, ErrBufferOutOfRange},
		{"zero focus", func(s *Settings) { s.BreakPreset.Focus = 0 }, ErrInvalidBreakPreset},
		{"negative rest", func(s *Settings) { s.BreakPreset.Rest = -1 }, ErrInvalidBreakPreset},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := DefaultSettings(owner)
			tc.mutate(&s)
			assert.ErrorIs(t, s.Validate(), tc.err)
		})
	}
}
