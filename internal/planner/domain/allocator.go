package domain

import "time"

// Session chunk bounds, in minutes.
const (
	MinSessionMinutes = 25
	MaxSessionMinutes = 120
)

// Placement is one minute-chunk handed out by the allocator: a concrete
// interval inside one of the bucket's segments.
type Placement struct {
	Start   time.Time
	End     time.Time
	Minutes int
}

// Allocate tries to place one chunk of work into the bucket. remaining is the
// minute count still owed for the current item; chunkPreference is the
// caller's ideal session length. When allowShorterThanMin is false, segments
// that can only fit a sub-minimum stub are skipped unless the item is already
// down to its tail. Callers loop until ok is false.
func Allocate(bucket *DayBucket, remaining, chunkPreference int, allowShorterThanMin bool) (Placement, bool) {
	if bucket.Used >= bucket.AllowedMinutes || remaining <= 0 {
		return Placement{}, false
	}

	for _, seg := range bucket.Segments {
		segCapacity := seg.Capacity()
		if segCapacity <= 0 {
			continue
		}
		remainingToday := bucket.AllowedMinutes - bucket.Used

		chunk := chunkPreference
		if remaining < chunk {
			chunk = remaining
		}
		if segCapacity < chunk {
			chunk = segCapacity
		}
		if chunk > MaxSessionMinutes {
			chunk = MaxSessionMinutes
		}
		if remainingToday < chunk {
			chunk = remainingToday
		}

		if chunk < MinSessionMinutes && remaining > MinSessionMinutes && !allowShorterThanMin {
			continue
		}

		minutes := chunk
		if minutes == 0 {
			// Degenerate chunk preference: fall back to draining the segment,
			// still bounded by the day's allowance.
			minutes = remaining
			if segCapacity < minutes {
				minutes = segCapacity
			}
			if remainingToday < minutes {
				minutes = remainingToday
			}
		}
		if minutes <= 0 {
			continue
		}

		start := seg.Start.Add(time.Duration(seg.Used) * time.Minute)
		end := start.Add(time.Duration(minutes) * time.Minute)
		seg.Used += minutes
		bucket.Used += minutes
		return Placement{Start: start, End: end, Minutes: minutes}, true
	}

	return Placement{}, false
}
