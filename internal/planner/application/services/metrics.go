package services

import (
	"fmt"
	"math"
	"time"

	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// Range keys accepted by the metrics endpoint.
const (
	RangeDay   = "day"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// Feasibility penalty caps.
const (
	maxOverloadPenalty     = 30
	maxShortfallPenalty    = 25
	maxMissingBreakPenalty = 20
)

// PlanMetrics is the dashboard payload for one date range.
type PlanMetrics struct {
	Range              string   `json:"range"`
	RangeStart         string   `json:"rangeStart"`
	RangeEnd           string   `json:"rangeEnd"`
	TotalSessions      int      `json:"totalSessions"`
	DoneSessions       int      `json:"doneSessions"`
	CompletionRate     float64  `json:"completionRate"`
	FeasibilityScore   int      `json:"feasibilityScore"`
	FeasibilityReasons []string `json:"feasibilityReasons"`
	PlanVersion        *int     `json:"planVersion"`
}

// MetricsInput bundles the reads one metrics computation needs.
type MetricsInput struct {
	RangeKey   string
	AnchorDate string // YYYY-MM-DD, empty for today
	Now        time.Time
	Plan       *domain.PlanRecord // nil when the owner has no plan yet
	Tasks      []domain.Task
	Slots      []domain.FreeSlot
	Settings   domain.Settings
}

// ComputePlanMetrics derives the completion rate and a 0-100 feasibility
// score for the requested range, anchored in the owner's timezone.
func ComputePlanMetrics(in MetricsInput) PlanMetrics {
	loc := in.Settings.Location()
	rangeStart, rangeEnd := resolveRange(in.RangeKey, in.AnchorDate, in.Now, loc)

	metrics := PlanMetrics{
		Range:              in.RangeKey,
		RangeStart:         rangeStart.Format(time.RFC3339),
		RangeEnd:           rangeEnd.Format(time.RFC3339),
		FeasibilityReasons: []string{},
	}

	if in.Plan == nil {
		metrics.FeasibilityReasons = append(metrics.FeasibilityReasons, "no plan yet - run a rebuild first")
		return metrics
	}

	version := in.Plan.PlanVersion
	metrics.PlanVersion = &version

	startKey := domain.DateKey(rangeStart, loc)
	endKey := domain.DateKey(rangeEnd, loc)

	var inRange []domain.Session
	breakDays := make(map[string]bool)
	for _, s := range in.Plan.Sessions {
		key := domain.DateKey(s.PlannedStart.Time(), loc)
		if key < startKey || key >= endKey {
			continue
		}
		if s.IsBreak() {
			breakDays[key] = true
			continue
		}
		inRange = append(inRange, s)
	}

	metrics.TotalSessions = len(inRange)
	for _, s := range inRange {
		if s.Status == domain.StatusDone {
			metrics.DoneSessions++
		}
	}
	if metrics.TotalSessions > 0 {
		rate := float64(metrics.DoneSessions) / float64(metrics.TotalSessions) * 100
		metrics.CompletionRate = math.Round(rate*10) / 10
	}

	metrics.FeasibilityScore, metrics.FeasibilityReasons = feasibility(inRange, breakDays, in, loc)
	return metrics
}

func feasibility(inRange []domain.Session, breakDays map[string]bool, in MetricsInput, loc *time.Location) (int, []string) {
	score := 100
	reasons := []string{}

	minutesByDay := make(map[string]int)
	for _, s := range inRange {
		minutesByDay[domain.DateKey(s.PlannedStart.Time(), loc)] += s.Minutes
	}

	overloaded := 0
	peak := 0
	for _, minutes := range minutesByDay {
		if minutes > in.Settings.DailyLimitMinutes {
			overloaded++
			if minutes > peak {
				peak = minutes
			}
		}
	}
	if overloaded > 0 {
		penalty := overloaded * 10
		if penalty > maxOverloadPenalty {
			penalty = maxOverloadPenalty
		}
		score -= penalty
		reasons = append(reasons, fmt.Sprintf("overloaded: %d days exceed %d minutes (max %d)", overloaded, in.Settings.DailyLimitMinutes, peak))
	}

	demand := 0
	for _, t := range in.Tasks {
		demand += t.RemainingMinutes()
	}
	capacity := 0
	for _, s := range in.Slots {
		capacity += s.CapacityMinutes
	}
	if capacity > 0 && demand > capacity {
		shortage := float64(demand-capacity) / float64(demand)
		penalty := int(math.Floor(shortage * 40))
		if penalty > maxShortfallPenalty {
			penalty = maxShortfallPenalty
		}
		score -= penalty
		reasons = append(reasons, fmt.Sprintf("capacity shortfall: %d minutes of work against %d free minutes", demand, capacity))
	}

	missingBreaks := 0
	for day := range minutesByDay {
		if !breakDays[day] {
			missingBreaks++
		}
	}
	if missingBreaks > 0 {
		penalty := missingBreaks * 5
		if penalty > maxMissingBreakPenalty {
			penalty = maxMissingBreakPenalty
		}
		score -= penalty
		reasons = append(reasons, fmt.Sprintf("no rest sessions on %d focus days", missingBreaks))
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, reasons
}

// resolveRange computes [start, end) for the requested range key in loc.
// Weeks start on Monday.
func resolveRange(rangeKey, anchorDate string, now time.Time, loc *time.Location) (time.Time, time.Time) {
	anchor := now.In(loc)
	if anchorDate != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", anchorDate, loc); err == nil {
			anchor = parsed
		}
	}

	switch rangeKey {
	case RangeDay:
		start := domain.Midnight(anchor, loc)
		return start, start.AddDate(0, 0, 1)
	case RangeMonth:
		start := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0)
	default: // week
		sinceMonday := (int(anchor.Weekday()) + 6) % 7
		start := domain.Midnight(anchor.AddDate(0, 0, -sinceMonday), loc)
		return start, start.AddDate(0, 0, 7)
	}
}
