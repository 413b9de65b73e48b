package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// Slot duration cap applied by the cleaner, in minutes.
const MaxSlotMinutes = 180

// longSlotThreshold is the duration at which the cleaner warns before capping.
const longSlotThreshold = 720

// FreeSlot is a recurring weekly availability window declared by the owner.
// Weekday follows the Sunday=0 convention; times are HH:MM local clock time.
type FreeSlot struct {
	ID              uuid.UUID
	OwnerID         uuid.UUID
	Weekday         int
	StartTime       string
	EndTime         string
	CapacityMinutes int
	Source          string
	CreatedAt       time.Time
}

// TimeToMinutes converts an HH:MM clock string to minutes since midnight.
func TimeToMinutes(clock string) int {
	var h, m int
	if _, err := fmt.Sscanf(clock, "%d:%d", &h, &m); err != nil {
		return 0
	}
	return h*60 + m
}

// MinutesToTime converts minutes since midnight back to an HH:MM string.
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// CleanResult is the output of CleanSlots: the canonical slot pattern plus
// human-readable warnings about repaired input.
type CleanResult struct {
	Slots    []FreeSlot
	Warnings []string
}

// CleanSlots normalizes a declared weekly pattern: inverted windows are
// dropped, over-long windows are capped at MaxSlotMinutes, and overlapping
// windows on the same weekday are merged. Output is ordered by weekday then
// start time, which makes the operation idempotent by value.
func CleanSlots(slots []FreeSlot) CleanResult {
	type interval struct {
		start, end int
		src        FreeSlot
	}

	byWeekday := make(map[int][]interval)
	var warnings []string

	for _, s := range slots {
		start := TimeToMinutes(s.StartTime)
		end := TimeToMinutes(s.EndTime)
		if end <= start {
			warnings = append(warnings, fmt.Sprintf("slot %s-%s on day %d has inverted hours", s.StartTime, s.EndTime, s.Weekday))
			continue
		}
		duration := end - start
		if duration >= longSlotThreshold {
			warnings = append(warnings, fmt.Sprintf("slot %s-%s on day %d too long, capped at %d minutes", s.StartTime, s.EndTime, s.Weekday, MaxSlotMinutes))
		}
		if duration > MaxSlotMinutes {
			duration = MaxSlotMinutes
			end = start + duration
		}
		byWeekday[s.Weekday] = append(byWeekday[s.Weekday], interval{start: start, end: end, src: s})
	}

	var cleaned []FreeSlot
	for weekday := 0; weekday <= 6; weekday++ {
		day := byWeekday[weekday]
		if len(day) == 0 {
			continue
		}
		sort.SliceStable(day, func(i, j int) bool { return day[i].start < day[j].start })

		merged := day[:1:1]
		for _, iv := range day[1:] {
			last := &merged[len(merged)-1]
			if iv.start <= last.end {
				if iv.end > last.end {
					last.end = iv.end
				}
				continue
			}
			merged = append(merged, iv)
		}
		if len(merged) < len(day) {
			warnings = append(warnings, fmt.Sprintf("merged overlapping slots on day %d", weekday))
		}

		for _, iv := range merged {
			// Merging capped neighbours can exceed the cap again; re-cap so
			// cleaning is idempotent by value.
			if iv.end-iv.start > MaxSlotMinutes {
				iv.end = iv.start + MaxSlotMinutes
			}
			out := iv.src
			out.Weekday = weekday
			out.StartTime = MinutesToTime(iv.start)
			out.EndTime = MinutesToTime(iv.end)
			out.CapacityMinutes = iv.end - iv.start
			cleaned = append(cleaned, out)
		}
	}

	return CleanResult{Slots: cleaned, Warnings: warnings}
}
