package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/database"
)

// PostgresStudyRepository serves the planner's input reads from PostgreSQL.
type PostgresStudyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStudyRepository creates a new PostgreSQL study repository.
func NewPostgresStudyRepository(pool *pgxpool.Pool) *PostgresStudyRepository {
	return &PostgresStudyRepository{pool: pool}
}

// ListTasks returns the owner's tasks ordered by creation time.
func (r *PostgresStudyRepository) ListTasks(ctx context.Context, owner uuid.UUID) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, subject, title, deadline, timezone, difficulty, importance,
		        estimated_minutes, progress_minutes, success_criteria, content_focus,
		        milestones, notes, created_at, updated_at
		 FROM tasks WHERE owner_id = $1 ORDER BY created_at, id`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var (
			t                          domain.Task
			rawCriteria, rawMilestones []byte
		)
		err := rows.Scan(&t.ID, &t.OwnerID, &t.Subject, &t.Title, &t.Deadline, &t.Timezone,
			&t.Difficulty, &t.Importance, &t.EstimatedMinutes, &t.ProgressMinutes,
			&rawCriteria, &t.ContentFocus, &rawMilestones, &t.Notes, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if t.SuccessCriteria, err = decodeStrings(rawCriteria); err != nil {
			return nil, err
		}
		if t.Milestones, err = decodeMilestones(rawMilestones); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a task.
func (r *PostgresStudyRepository) CreateTask(ctx context.Context, t domain.Task) error {
	criteria, err := encodeStrings(t.SuccessCriteria)
	if err != nil {
		return err
	}
	milestones, err := encodeMilestones(t.Milestones)
	if err != nil {
		return err
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO tasks (id, owner_id, subject, title, deadline, timezone, difficulty, importance,
		                    estimated_minutes, progress_minutes, success_criteria, content_focus,
		                    milestones, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.OwnerID, t.Subject, t.Title, t.Deadline, t.Timezone, t.Difficulty, t.Importance,
		t.EstimatedMinutes, t.ProgressMinutes, criteria, t.ContentFocus,
		milestones, t.Notes, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// ListHabits returns the owner's habits in declaration order.
func (r *PostgresStudyRepository) ListHabits(ctx context.Context, owner uuid.UUID) ([]domain.Habit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, name, cadence, weekday, minutes, preset, preferred_start, energy_window, created_at
		 FROM habits WHERE owner_id = $1 ORDER BY created_at, id`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []domain.Habit
	for rows.Next() {
		var (
			h       domain.Habit
			cadence string
		)
		err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &cadence, &h.Weekday, &h.Minutes,
			&h.Preset, &h.PreferredStart, &h.EnergyWindow, &h.CreatedAt)
		if err != nil {
			return nil, err
		}
		h.Cadence = domain.Cadence(cadence)
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// CreateHabit inserts a habit.
func (r *PostgresStudyRepository) CreateHabit(ctx context.Context, h domain.Habit) error {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO habits (id, owner_id, name, cadence, weekday, minutes, preset, preferred_start, energy_window, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		h.ID, h.OwnerID, h.Name, string(h.Cadence), h.Weekday,
		h.Minutes, h.Preset, h.PreferredStart, h.EnergyWindow, h.CreatedAt,
	)
	return err
}

// ListSlots returns the owner's raw weekly pattern.
func (r *PostgresStudyRepository) ListSlots(ctx context.Context, owner uuid.UUID) ([]domain.FreeSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, weekday, start_time, end_time, capacity_minutes, source, created_at
		 FROM free_slots WHERE owner_id = $1 ORDER BY weekday, start_time, id`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.FreeSlot
	for rows.Next() {
		var s domain.FreeSlot
		err := rows.Scan(&s.ID, &s.OwnerID, &s.Weekday, &s.StartTime, &s.EndTime,
			&s.CapacityMinutes, &s.Source, &s.CreatedAt)
		if err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// CreateSlot inserts a free slot.
func (r *PostgresStudyRepository) CreateSlot(ctx context.Context, s domain.FreeSlot) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO free_slots (id, owner_id, weekday, start_time, end_time, capacity_minutes, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.OwnerID, s.Weekday, s.StartTime, s.EndTime, s.CapacityMinutes, s.Source, s.CreatedAt,
	)
	return err
}

// GetSettings returns the owner's planner settings, or the defaults when the
// owner never saved any.
func (r *PostgresStudyRepository) GetSettings(ctx context.Context, owner uuid.UUID) (domain.Settings, error) {
	var s domain.Settings
	err := r.pool.QueryRow(ctx,
		`SELECT daily_limit_minutes, buffer_percent, break_focus, break_rest, break_label, timezone, last_updated
		 FROM planner_settings WHERE owner_id = $1`,
		owner,
	).Scan(&s.DailyLimitMinutes, &s.BufferPercent, &s.BreakPreset.Focus,
		&s.BreakPreset.Rest, &s.BreakPreset.Label, &s.Timezone, &s.LastUpdated)
	if database.IsNoRows(err) {
		return domain.DefaultSettings(owner), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	s.OwnerID = owner
	return s, nil
}

// PutSettings upserts the owner's planner settings.
func (r *PostgresStudyRepository) PutSettings(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO planner_settings (owner_id, daily_limit_minutes, buffer_percent, break_focus, break_rest, break_label, timezone, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (owner_id) DO UPDATE SET
		   daily_limit_minutes = EXCLUDED.daily_limit_minutes,
		   buffer_percent = EXCLUDED.buffer_percent,
		   break_focus = EXCLUDED.break_focus,
		   break_rest = EXCLUDED.break_rest,
		   break_label = EXCLUDED.break_label,
		   timezone = EXCLUDED.timezone,
		   last_updated = EXCLUDED.last_updated`,
		s.OwnerID, s.DailyLimitMinutes, s.BufferPercent,
		s.BreakPreset.Focus, s.BreakPreset.Rest, s.BreakPreset.Label,
		s.Timezone, time.Now().UTC(),
	)
	return err
}

// ListFeedback returns the owner's feedback ascending by submission time.
func (r *PostgresStudyRepository) ListFeedback(ctx context.Context, owner uuid.UUID) ([]domain.Feedback, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, owner_id, label, note, plan_version, submitted_at
		 FROM plan_feedback WHERE owner_id = $1 ORDER BY submitted_at, id`,
		owner,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedback []domain.Feedback
	for rows.Next() {
		var (
			f     domain.Feedback
			label string
		)
		if err := rows.Scan(&f.ID, &f.OwnerID, &label, &f.Note, &f.PlanVersion, &f.SubmittedAt); err != nil {
			return nil, err
		}
		f.Label = domain.FeedbackLabel(label)
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}

// AddFeedback inserts a feedback note.
func (r *PostgresStudyRepository) AddFeedback(ctx context.Context, f domain.Feedback) error {
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO plan_feedback (id, owner_id, label, note, plan_version, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.OwnerID, string(f.Label), f.Note, f.PlanVersion, f.SubmittedAt,
	)
	return err
}
