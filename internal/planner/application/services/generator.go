package services

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// defaultHorizonDays is the planning span when no task supplies a deadline.
const defaultHorizonDays = 14

// GenerateInput carries everything one rebuild needs. The generator is pure:
// all state lives here and in the returned record.
type GenerateInput struct {
	Owner       uuid.UUID
	Tasks       []domain.Task
	Slots       []domain.FreeSlot
	Habits      []domain.Habit
	Settings    domain.Settings
	Now         time.Time
	PlanVersion int // provisional; the store may bump it on save
}

// Generator produces time-boxed study plans.
type Generator struct {
	logger *slog.Logger
}

// NewGenerator creates a plan generator.
func NewGenerator(logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{logger: logger}
}

// Generate lays habits and task work across the planning horizon and
// interleaves breaks. Work that cannot fit is reported through
// UnscheduledTasks and Suggestions; generation itself never fails.
func (g *Generator) Generate(in GenerateInput) *domain.PlanRecord {
	settings := in.Settings
	loc := settings.Location()

	plan := &domain.PlanRecord{
		ID:               uuid.NewString(),
		OwnerID:          in.Owner,
		PlanVersion:      in.PlanVersion,
		Sessions:         []domain.Session{},
		UnscheduledTasks: []domain.UnscheduledTask{},
		Suggestions:      []domain.Suggestion{},
		GeneratedAt:      domain.NewISOTime(in.Now),
	}

	cleaned := domain.CleanSlots(in.Slots)
	for _, warning := range cleaned.Warnings {
		plan.Suggestions = append(plan.Suggestions, domain.Suggestion{
			Type:    domain.SuggestIncreaseFreeTime,
			Message: warning,
		})
	}

	buckets := domain.BuildDayBuckets(in.Now, g.horizonEnd(in), cleaned.Slots, settings)

	focus := g.scheduleHabits(plan, buckets, in.Habits, settings, loc)
	focus = append(focus, g.scheduleTasks(plan, buckets, in.Tasks, settings, loc)...)

	plan.Sessions = InterleaveBreaks(focus, settings.BreakPreset, in.PlanVersion, loc)

	g.logger.Debug("plan generated",
		"owner_id", in.Owner,
		"sessions", len(plan.Sessions),
		"unscheduled", len(plan.UnscheduledTasks),
		"buckets", len(buckets),
	)
	return plan
}

// horizonEnd picks the last planned day: the latest future deadline, or a
// fixed span when nothing is due.
func (g *Generator) horizonEnd(in GenerateInput) time.Time {
	var latest time.Time
	for _, t := range in.Tasks {
		if t.Deadline.After(in.Now) && t.Deadline.After(latest) {
			latest = t.Deadline
		}
	}
	if latest.IsZero() {
		return in.Now.AddDate(0, 0, defaultHorizonDays)
	}
	return latest
}

func (g *Generator) scheduleHabits(plan *domain.PlanRecord, buckets []*domain.DayBucket, habits []domain.Habit, settings domain.Settings, loc *time.Location) []domain.Session {
	var sessions []domain.Session

	for _, bucket := range buckets {
		for _, habit := range habits {
			if !habit.EligibleOn(bucket.Weekday) {
				continue
			}

			remaining := habit.Minutes
			placedAny := false
			for remaining > 0 {
				placement, ok := domain.Allocate(bucket, remaining, habit.Minutes, true)
				if !ok {
					break
				}
				placedAny = true
				remaining -= placement.Minutes

				habitID := habit.ID.String()
				sessions = append(sessions, domain.Session{
					ID:              domain.NewSessionID(),
					Source:          domain.SourceHabit,
					HabitID:         &habitID,
					Subject:         "Habit",
					Title:           habit.Name,
					PlannedStart:    domain.NewISOTime(placement.Start),
					PlannedEnd:      domain.NewISOTime(placement.End),
					Minutes:         placement.Minutes,
					BufferMinutes:   int(math.Round(float64(placement.Minutes) * settings.BufferPercent * 0.5)),
					Status:          domain.StatusPending,
					SuccessCriteria: []string{fmt.Sprintf("Sustain %d minutes", habit.Minutes)},
					PlanVersion:     plan.PlanVersion,
				})
			}

			// Only days with declared availability are worth nagging about.
			if !placedAny && len(bucket.Segments) > 0 {
				plan.Suggestions = append(plan.Suggestions, domain.Suggestion{
					Type:    domain.SuggestIncreaseFreeTime,
					Message: fmt.Sprintf("insufficient slot for habit %s on %s", habit.Name, domain.DateKey(bucket.Date, loc)),
				})
			}
		}
	}
	return sessions
}

func (g *Generator) scheduleTasks(plan *domain.PlanRecord, buckets []*domain.DayBucket, tasks []domain.Task, settings domain.Settings, loc *time.Location) []domain.Session {
	queue := make([]domain.Task, len(tasks))
	copy(queue, tasks)
	domain.SortTasksByPriority(queue)

	chunkPreference := settings.BreakPreset.Focus
	if chunkPreference < domain.MinSessionMinutes {
		chunkPreference = domain.MinSessionMinutes
	}
	if chunkPreference > domain.MaxSessionMinutes {
		chunkPreference = domain.MaxSessionMinutes
	}

	var sessions []domain.Session
	for _, task := range queue {
		remaining := task.RemainingMinutes()
		if remaining == 0 {
			continue
		}

		eligible := eligibleBuckets(buckets, task.Deadline, loc)
		if len(eligible) == 0 {
			plan.UnscheduledTasks = append(plan.UnscheduledTasks, domain.SnapshotUnscheduled(task, remaining))
			plan.Suggestions = append(plan.Suggestions, domain.Suggestion{
				Type:    domain.SuggestIncreaseFreeTime,
				Message: fmt.Sprintf("task %s outside any slot", task.Title),
			})
			continue
		}

		criteria := task.BaseCriteria()
		checklist := task.Checklist()

		if len(task.Milestones) > 0 {
			for _, milestone := range task.Milestones {
				msRemaining := milestone.MinutesEstimate
				if remaining < msRemaining {
					msRemaining = remaining
				}
				for _, bucket := range eligible {
					if msRemaining <= 0 {
						break
					}
					for msRemaining > 0 {
						// Milestones drain into whatever is left of a segment;
						// only unmilestoned work refuses sub-minimum stubs.
						placement, ok := domain.Allocate(bucket, msRemaining, milestone.MinutesEstimate, true)
						if !ok {
							break
						}
						msRemaining -= placement.Minutes
						remaining -= placement.Minutes
						sessions = append(sessions, g.taskSession(task, placement, settings, criteria, checklist, &milestone.Title, plan.PlanVersion))
					}
				}
			}
		} else {
			for _, bucket := range eligible {
				if remaining <= 0 {
					break
				}
				for remaining > 0 {
					placement, ok := domain.Allocate(bucket, remaining, chunkPreference, false)
					if !ok {
						break
					}
					remaining -= placement.Minutes
					sessions = append(sessions, g.taskSession(task, placement, settings, criteria, checklist, nil, plan.PlanVersion))
				}
			}
		}

		if remaining > 0 {
			plan.UnscheduledTasks = append(plan.UnscheduledTasks, domain.SnapshotUnscheduled(task, remaining))
			plan.Suggestions = append(plan.Suggestions, domain.Suggestion{
				Type:    domain.SuggestReduceDuration,
				Message: fmt.Sprintf("task %s short by %d minutes", task.Title, remaining),
			})
		}
	}
	return sessions
}

func (g *Generator) taskSession(task domain.Task, placement domain.Placement, settings domain.Settings, criteria, checklist []string, milestoneTitle *string, planVersion int) domain.Session {
	taskID := task.ID.String()
	return domain.Session{
		ID:              domain.NewSessionID(),
		Source:          domain.SourceTask,
		TaskID:          &taskID,
		Subject:         task.Subject,
		Title:           task.Title,
		PlannedStart:    domain.NewISOTime(placement.Start),
		PlannedEnd:      domain.NewISOTime(placement.End),
		Minutes:         placement.Minutes,
		BufferMinutes:   int(math.Round(float64(placement.Minutes) * settings.BufferPercent)),
		Status:          domain.StatusPending,
		Checklist:       checklist,
		SuccessCriteria: criteria,
		MilestoneTitle:  milestoneTitle,
		PlanVersion:     planVersion,
	}
}

// eligibleBuckets keeps the days not past the task's deadline date in the
// owner's timezone. A 23:59 deadline keeps its own day eligible.
func eligibleBuckets(buckets []*domain.DayBucket, deadline time.Time, loc *time.Location) []*domain.DayBucket {
	cutoff := domain.Midnight(deadline, loc)
	var eligible []*domain.DayBucket
	for _, b := range buckets {
		if b.Date.After(cutoff) {
			break
		}
		if len(b.Segments) > 0 {
			eligible = append(eligible, b)
		}
	}
	return eligible
}
