package domain

import (
	"math"
	"time"
)

// Segment is one concrete allocatable window on a specific date, derived from
// a recurring FreeSlot. Used tracks minutes already handed out by the
// allocator from the segment's start.
type Segment struct {
	Start time.Time
	End   time.Time
	Used  int
}

// Capacity returns the unallocated minutes left in the segment.
func (s *Segment) Capacity() int {
	total := int(s.End.Sub(s.Start) / time.Minute)
	if total < 0 {
		total = 0
	}
	return total - s.Used
}

// DayBucket is one calendar day of the planning horizon with its segments and
// daily allowance.
type DayBucket struct {
	Date           time.Time // midnight in the owner's timezone
	Weekday        int       // Sunday=0
	Segments       []*Segment
	AllowedMinutes int
	Used           int
}

// HasCapacity reports whether any segment still has allocatable minutes and
// the daily allowance is not exhausted.
func (b *DayBucket) HasCapacity() bool {
	if b.Used >= b.AllowedMinutes {
		return false
	}
	for _, seg := range b.Segments {
		if seg.Capacity() > 0 {
			return true
		}
	}
	return false
}

// BuildDayBuckets projects the cleaned weekly pattern onto the concrete date
// range [now, end] in the owner's timezone. Today's segments are clamped so
// minutes already in the past are unavailable. Days without matching slots
// are still spanned; they simply carry no segments.
func BuildDayBuckets(now, end time.Time, slots []FreeSlot, settings Settings) []*DayBucket {
	loc := settings.Location()
	start := Midnight(now, loc)
	last := Midnight(end, loc)

	var buckets []*DayBucket
	for date := start; !date.After(last); date = date.AddDate(0, 0, 1) {
		weekday := WeekdaySunday0(date)

		var segments []*Segment
		total := 0
		for _, slot := range slots {
			if slot.Weekday != weekday {
				continue
			}
			segStart := date.Add(time.Duration(TimeToMinutes(slot.StartTime)) * time.Minute)
			segEnd := date.Add(time.Duration(TimeToMinutes(slot.EndTime)) * time.Minute)
			if date.Equal(start) && segStart.Before(now) {
				segStart = now
			}
			if !segEnd.After(segStart) {
				continue
			}
			segments = append(segments, &Segment{Start: segStart, End: segEnd})
			total += int(segEnd.Sub(segStart) / time.Minute)
		}

		allowed := int(math.Floor(float64(total) * (1 - settings.BufferPercent)))
		if allowed > settings.DailyLimitMinutes {
			allowed = settings.DailyLimitMinutes
		}
		if allowed < 0 {
			allowed = 0
		}

		buckets = append(buckets, &DayBucket{
			Date:           date,
			Weekday:        weekday,
			Segments:       segments,
			AllowedMinutes: allowed,
		})
	}
	return buckets
}
