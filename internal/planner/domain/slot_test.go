package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slot(weekday int, start, end string) FreeSlot {
	return FreeSlot{
		ID:        uuid.New(),
		OwnerID:   uuid.New(),
		Weekday:   weekday,
		StartTime: start,
		EndTime:   end,
		Source:    "manual",
	}
}

func TestTimeToMinutes(t *testing.T) {
	assert.Equal(t, 0, TimeToMinutes("00:00"))
	assert.Equal(t, 19*60+30, TimeToMinutes("19:30"))
	assert.Equal(t, 0, TimeToMinutes("garbage"))
	assert.Equal(t, "08:05", MinutesToTime(8*60+5))
}

func TestCleanSlots_DropsInvertedWindows(t *testing.T) {
	result := CleanSlots([]FreeSlot{slot(1, "10:00", "09:00")})

	assert.Empty(t, result.Slots)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "inverted hours")
}

func TestCleanSlots_CapsLongWindows(t *testing.T) {
	// 240 minutes: over the cap but under the warning threshold.
	result := CleanSlots([]FreeSlot{slot(2, "08:00", "12:00")})

	require.Len(t, result.Slots, 1)
	assert.Equal(t, "08:00", result.Slots[0].StartTime)
	assert.Equal(t, "11:00", result.Slots[0].EndTime)
	assert.Equal(t, MaxSlotMinutes, result.Slots[0].CapacityMinutes)
	assert.Empty(t, result.Warnings)
}

func TestCleanSlots_WarnsOnAbsurdWindows(t *testing.T) {
	// 720 minutes crosses the warning threshold before being capped.
	result := CleanSlots([]FreeSlot{slot(3, "08:00", "20:00")})

	require.Len(t, result.Slots, 1)
	assert.Equal(t, "11:00", result.Slots[0].EndTime)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "too long")
}

func TestCleanSlots_MergesOverlaps(t *testing.T) {
	result := CleanSlots([]FreeSlot{
		slot(1, "09:00", "10:00"),
		slot(1, "09:30", "11:00"),
	})

	require.Len(t, result.Slots, 1)
	assert.Equal(t, "09:00", result.Slots[0].StartTime)
	assert.Equal(t, "11:00", result.Slots[0].EndTime)
	assert.Equal(t, 120, result.Slots[0].CapacityMinutes)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "merged overlapping")
}

func TestCleanSlots_TouchingWindowsMerge(t *testing.T) {
	result := CleanSlots([]FreeSlot{
		slot(4, "09:00", "10:00"),
		slot(4, "10:00", "11:00"),
	})

	require.Len(t, result.Slots, 1)
	assert.Equal(t, "09:00", result.Slots[0].StartTime)
	assert.Equal(t, "11:00", result.Slots[0].EndTime)
}

func TestCleanSlots_OrdersByWeekdayThenStart(t *testing.T) {
	result := CleanSlots([]FreeSlot{
		slot(5, "19:00", "20:00"),
		slot(1, "20:00", "21:00"),
		slot(1, "08:00", "09:00"),
	})

	require.Len(t, result.Slots, 3)
	assert.Equal(t, 1, result.Slots[0].Weekday)
	assert.Equal(t, "08:00", result.Slots[0].StartTime)
	assert.Equal(t, 1, result.Slots[1].Weekday)
	assert.Equal(t, "20:00", result.Slots[1].StartTime)
	assert.Equal(t, 5, result.Slots[2].Weekday)
}

func TestCleanSlots_Idempotent(t *testing.T) {
	input := []FreeSlot{
		slot(1, "09:00", "10:00"),
		slot(1, "09:30", "13:00"), // capped, then merged
		slot(6, "08:00", "11:00"),
		slot(2, "22:00", "21:00"), // dropped
	}

	once := CleanSlots(input)
	twice := CleanSlots(once.Slots)

	assert.Equal(t, once.Slots, twice.Slots)
	assert.Empty(t, twice.Warnings)
}

func TestCleanSlots_RecapsAfterMerge(t *testing.T) {
	// Two capped neighbours merge into a window over the cap again.
	result := CleanSlots([]FreeSlot{
		slot(0, "08:00", "11:00"),
		slot(0, "10:00", "13:00"),
	})

	require.Len(t, result.Slots, 1)
	assert.LessOrEqual(t, result.Slots[0].CapacityMinutes, MaxSlotMinutes)
	assert.Equal(t, "11:00", result.Slots[0].EndTime)
}
