package commands

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
)

// memStudyStore is an in-memory stand-in for the study-input repositories.
type memStudyStore struct {
	tasks    []domain.Task
	habits   []domain.Habit
	slots    []domain.FreeSlot
	settings map[uuid.UUID]domain.Settings
	feedback []domain.Feedback

	tasksErr error
}

func newMemStudyStore() *memStudyStore {
	return &memStudyStore{settings: make(map[uuid.UUID]domain.Settings)}
}

func (m *memStudyStore) ListTasks(_ context.Context, owner uuid.UUID) ([]domain.Task, error) {
	if m.tasksErr != nil {
		return nil, m.tasksErr
	}
	var out []domain.Task
	for _, t := range m.tasks {
		if t.OwnerID == owner {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStudyStore) ListHabits(_ context.Context, owner uuid.UUID) ([]domain.Habit, error) {
	var out []domain.Habit
	for _, h := range m.habits {
		if h.OwnerID == owner {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memStudyStore) ListSlots(_ context.Context, owner uuid.UUID) ([]domain.FreeSlot, error) {
	var out []domain.FreeSlot
	for _, s := range m.slots {
		if s.OwnerID == owner {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStudyStore) GetSettings(_ context.Context, owner uuid.UUID) (domain.Settings, error) {
	if s, ok := m.settings[owner]; ok {
		return s, nil
	}
	return domain.DefaultSettings(owner), nil
}

func (m *memStudyStore) ListFeedback(_ context.Context, owner uuid.UUID) ([]domain.Feedback, error) {
	var out []domain.Feedback
	for _, f := range m.feedback {
		if f.OwnerID == owner {
			out = append(out, f)
		}
	}
	return out, nil
}

// memPlanRepo is an in-memory domain.PlanRepository with the same versioning
// behavior as the SQL implementations.
type memPlanRepo struct {
	mu    sync.Mutex
	plans []*domain.PlanRecord

	saveErr error
}

func (m *memPlanRepo) GetLatest(_ context.Context, owner uuid.UUID) (*domain.PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.PlanRecord
	for _, p := range m.plans {
		if p.OwnerID != owner {
			continue
		}
		if latest == nil || p.PlanVersion > latest.PlanVersion {
			latest = p
		}
	}
	if latest == nil {
		return nil, domain.ErrPlanNotFound
	}
	return latest, nil
}

func (m *memPlanRepo) ListPlans(_ context.Context, owner uuid.UUID, limit int) ([]*domain.PlanRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.PlanRecord
	for i := len(m.plans) - 1; i >= 0 && len(out) < limit; i-- {
		if m.plans[i].OwnerID == owner {
			out = append(out, m.plans[i])
		}
	}
	return out, nil
}

func (m *memPlanRepo) Save(_ context.Context, plan *domain.PlanRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 1
	for _, p := range m.plans {
		if p.OwnerID == plan.OwnerID && p.PlanVersion >= next {
			next = p.PlanVersion + 1
		}
	}
	plan.PlanVersion = next
	for i := range plan.Sessions {
		plan.Sessions[i].PlanVersion = next
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	plan.CreatedAt = time.Now().UTC()
	m.plans = append(m.plans, plan)
	return nil
}

func (m *memPlanRepo) UpdateSessionStatus(_ context.Context, owner uuid.UUID, sessionID string, status domain.SessionStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *domain.PlanRecord
	for _, p := range m.plans {
		if p.OwnerID != owner {
			continue
		}
		if latest == nil || p.PlanVersion > latest.PlanVersion {
			latest = p
		}
	}
	if latest == nil {
		return domain.ErrSessionNotFound
	}
	idx := latest.FindSession(sessionID)
	if idx < 0 {
		return domain.ErrSessionNotFound
	}
	latest.Sessions[idx].Status = status
	return nil
}

func (m *memPlanRepo) RemoveTaskFromPlans(_ context.Context, owner uuid.UUID, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.OwnerID != owner {
			continue
		}
		var sessions []domain.Session
		for _, s := range p.Sessions {
			if s.TaskID != nil && *s.TaskID == taskID {
				continue
			}
			sessions = append(sessions, s)
		}
		p.Sessions = sessions
		var unscheduled []domain.UnscheduledTask
		for _, u := range p.UnscheduledTasks {
			if u.ID == taskID {
				continue
			}
			unscheduled = append(unscheduled, u)
		}
		p.UnscheduledTasks = unscheduled
	}
	return nil
}

func (m *memPlanRepo) RemoveHabitFromPlans(_ context.Context, owner uuid.UUID, habitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.plans {
		if p.OwnerID != owner {
			continue
		}
		var sessions []domain.Session
		for _, s := range p.Sessions {
			if s.HabitID != nil && *s.HabitID == habitID {
				continue
			}
			sessions = append(sessions, s)
		}
		p.Sessions = sessions
	}
	return nil
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu      sync.Mutex
	events  map[string][][]byte
	failing bool
}

var errPublisherDown = errors.New("broker unavailable")

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[string][][]byte)}
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	if p.failing {
		return errPublisherDown
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[routingKey] = append(p.events[routingKey], payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published(routingKey string) [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[routingKey]
}
