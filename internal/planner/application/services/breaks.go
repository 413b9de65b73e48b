package services

import (
	"sort"
	"time"

	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// contiguousGap is the largest gap between two focus sessions that still
// counts as back-to-back work needing a rest.
const contiguousGap = 5 * time.Minute

// heavyLoadMinutes is the combined length of two adjacent sessions beyond
// which the rest period is extended.
const heavyLoadMinutes = 90

// InterleaveBreaks inserts rest sessions between contiguous focus blocks and
// shifts every later session of the same day forward by the accumulated rest.
// Segments were allocation sources only; from here on each day is a flat
// timeline. The returned list is globally sorted by planned start.
func InterleaveBreaks(sessions []domain.Session, preset domain.BreakPreset, planVersion int, loc *time.Location) []domain.Session {
	byDay := make(map[string][]domain.Session)
	var dayKeys []string
	for _, s := range sessions {
		key := domain.DateKey(s.PlannedStart.Time(), loc)
		if _, seen := byDay[key]; !seen {
			dayKeys = append(dayKeys, key)
		}
		byDay[key] = append(byDay[key], s)
	}
	sort.Strings(dayKeys)

	// Non-nil so an empty plan still serializes as sessions=[].
	out := []domain.Session{}
	for _, key := range dayKeys {
		day := byDay[key]
		sort.SliceStable(day, func(i, j int) bool {
			return day[i].PlannedStart.Time().Before(day[j].PlannedStart.Time())
		})

		offset := time.Duration(0)
		for i, s := range day {
			out = append(out, shiftSession(s, offset))

			if i == len(day)-1 {
				continue
			}
			next := day[i+1]
			// Gaps are judged on the pre-shift timeline; both sides move by
			// the same offset so their relative spacing is unchanged.
			gap := next.PlannedStart.Time().Sub(s.PlannedEnd.Time())
			if gap > contiguousGap {
				continue
			}

			rest := preset.Rest
			if s.Minutes+next.Minutes >= heavyLoadMinutes {
				rest += 5
			}
			if rest <= 0 {
				continue
			}

			breakStart := s.PlannedEnd.Time().Add(offset)
			out = append(out, domain.Session{
				ID:              domain.NewSessionID(),
				Source:          domain.SourceBreak,
				Subject:         "Break",
				Title:           preset.Label,
				PlannedStart:    domain.NewISOTime(breakStart),
				PlannedEnd:      domain.NewISOTime(breakStart.Add(time.Duration(rest) * time.Minute)),
				Minutes:         rest,
				Status:          domain.StatusPending,
				SuccessCriteria: []string{"Rest"},
				PlanVersion:     planVersion,
			})
			offset += time.Duration(rest) * time.Minute
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlannedStart.Time().Before(out[j].PlannedStart.Time())
	})
	return out
}

func shiftSession(s domain.Session, offset time.Duration) domain.Session {
	if offset == 0 {
		return s
	}
	s.PlannedStart = domain.NewISOTime(s.PlannedStart.Time().Add(offset))
	s.PlannedEnd = domain.NewISOTime(s.PlannedEnd.Time().Add(offset))
	return s
}
