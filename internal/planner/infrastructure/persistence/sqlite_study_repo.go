package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/database"
)

// SQLiteStudyRepository serves the planner's input reads (tasks, habits,
// slots, settings, feedback) from SQLite. Writes exist for seeding and the
// CLI; the planner itself never mutates inputs.
type SQLiteStudyRepository struct {
	dbConn *sql.DB
}

// NewSQLiteStudyRepository creates a new SQLite study repository.
func NewSQLiteStudyRepository(dbConn *sql.DB) *SQLiteStudyRepository {
	return &SQLiteStudyRepository{dbConn: dbConn}
}

// ListTasks returns the owner's tasks ordered by creation time.
func (r *SQLiteStudyRepository) ListTasks(ctx context.Context, owner uuid.UUID) ([]domain.Task, error) {
	rows, err := r.dbConn.QueryContext(ctx,
		`SELECT id, owner_id, subject, title, deadline, timezone, difficulty, importance,
		        estimated_minutes, progress_minutes, success_criteria, content_focus,
		        milestones, notes, created_at, updated_at
		 FROM tasks WHERE owner_id = ? ORDER BY created_at, id`,
		owner.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var (
			t                          domain.Task
			id, ownerID                string
			deadline                   string
			rawCriteria, rawMilestones []byte
			createdAt, updatedAt       string
		)
		err := rows.Scan(&id, &ownerID, &t.Subject, &t.Title, &deadline, &t.Timezone,
			&t.Difficulty, &t.Importance, &t.EstimatedMinutes, &t.ProgressMinutes,
			&rawCriteria, &t.ContentFocus, &rawMilestones, &t.Notes, &createdAt, &updatedAt)
		if err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if t.OwnerID, err = uuid.Parse(ownerID); err != nil {
			return nil, err
		}
		if t.Deadline, err = time.Parse(time.RFC3339, deadline); err != nil {
			return nil, err
		}
		if t.SuccessCriteria, err = decodeStrings(rawCriteria); err != nil {
			return nil, err
		}
		if t.Milestones, err = decodeMilestones(rawMilestones); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			t.CreatedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			t.UpdatedAt = ts
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CreateTask inserts a task.
func (r *SQLiteStudyRepository) CreateTask(ctx context.Context, t domain.Task) error {
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
	_, err = r.dbConn.ExecContext(ctx,
		`INSERT INTO tasks (id, owner_id, subject, title, deadline, timezone, difficulty, importance,
		                    estimated_minutes, progress_minutes, success_criteria, content_focus,
		                    milestones, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.OwnerID.String(), t.Subject, t.Title,
		t.Deadline.UTC().Format(time.RFC3339), t.Timezone, t.Difficulty, t.Importance,
		t.EstimatedMinutes, t.ProgressMinutes, string(criteria), t.ContentFocus,
		string(milestones), t.Notes,
		t.CreatedAt.UTC().Format(time.RFC3339), t.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListHabits returns the owner's habits in declaration order.
func (r *SQLiteStudyRepository) ListHabits(ctx context.Context, owner uuid.UUID) ([]domain.Habit, error) {
	rows, err := r.dbConn.QueryContext(ctx,
		`SELECT id, owner_id, name, cadence, weekday, minutes, preset, preferred_start, energy_window, created_at
		 FROM habits WHERE owner_id = ? ORDER BY created_at, id`,
		owner.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var habits []domain.Habit
	for rows.Next() {
		var (
			h           domain.Habit
			id, ownerID string
			cadence     string
			weekday     sql.NullInt64
			createdAt   string
		)
		err := rows.Scan(&id, &ownerID, &h.Name, &cadence, &weekday, &h.Minutes,
			&h.Preset, &h.PreferredStart, &h.EnergyWindow, &createdAt)
		if err != nil {
			return nil, err
		}
		if h.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if h.OwnerID, err = uuid.Parse(ownerID); err != nil {
			return nil, err
		}
		h.Cadence = domain.Cadence(cadence)
		if weekday.Valid {
			wd := int(weekday.Int64)
			h.Weekday = &wd
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			h.CreatedAt = ts
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// CreateHabit inserts a habit.
func (r *SQLiteStudyRepository) CreateHabit(ctx context.Context, h domain.Habit) error {
	var weekday sql.NullInt64
	if h.Weekday != nil {
		weekday = sql.NullInt64{Int64: int64(*h.Weekday), Valid: true}
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	_, err := r.dbConn.ExecContext(ctx,
		`INSERT INTO habits (id, owner_id, name, cadence, weekday, minutes, preset, preferred_start, energy_window, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.ID.String(), h.OwnerID.String(), h.Name, string(h.Cadence), weekday,
		h.Minutes, h.Preset, h.PreferredStart, h.EnergyWindow,
		h.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// ListSlots returns the owner's raw weekly pattern; cleaning happens in the
// planner.
func (r *SQLiteStudyRepository) ListSlots(ctx context.Context, owner uuid.UUID) ([]domain.FreeSlot, error) {
	rows, err := r.dbConn.QueryContext(ctx,
		`SELECT id, owner_id, weekday, start_time, end_time, capacity_minutes, source, created_at
		 FROM free_slots WHERE owner_id = ? ORDER BY weekday, start_time, id`,
		owner.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []domain.FreeSlot
	for rows.Next() {
		var (
			s           domain.FreeSlot
			id, ownerID string
			createdAt   string
		)
		err := rows.Scan(&id, &ownerID, &s.Weekday, &s.StartTime, &s.EndTime,
			&s.CapacityMinutes, &s.Source, &createdAt)
		if err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if s.OwnerID, err = uuid.Parse(ownerID); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			s.CreatedAt = ts
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// CreateSlot inserts a free slot.
func (r *SQLiteStudyRepository) CreateSlot(ctx context.Context, s domain.FreeSlot) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.dbConn.ExecContext(ctx,
		`INSERT INTO free_slots (id, owner_id, weekday, start_time, end_time, capacity_minutes, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.OwnerID.String(), s.Weekday, s.StartTime, s.EndTime,
		s.CapacityMinutes, s.Source, s.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetSettings returns the owner's planner settings, or the defaults when the
// owner never saved any.
func (r *SQLiteStudyRepository) GetSettings(ctx context.Context, owner uuid.UUID) (domain.Settings, error) {
	var (
		s           domain.Settings
		lastUpdated string
	)
	err := r.dbConn.QueryRowContext(ctx,
		`SELECT daily_limit_minutes, buffer_percent, break_focus, break_rest, break_label, timezone, last_updated
		 FROM planner_settings WHERE owner_id = ?`,
		owner.String(),
	).Scan(&s.DailyLimitMinutes, &s.BufferPercent, &s.BreakPreset.Focus,
		&s.BreakPreset.Rest, &s.BreakPreset.Label, &s.Timezone, &lastUpdated)
	if database.IsNoRows(err) {
		return domain.DefaultSettings(owner), nil
	}
	if err != nil {
		return domain.Settings{}, err
	}
	s.OwnerID = owner
	if ts, err := time.Parse(time.RFC3339, lastUpdated); err == nil {
		s.LastUpdated = ts
	}
	return s, nil
}

// PutSettings upserts the owner's planner settings.
func (r *SQLiteStudyRepository) PutSettings(ctx context.Context, s domain.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	_, err := r.dbConn.ExecContext(ctx,
		`INSERT INTO planner_settings (owner_id, daily_limit_minutes, buffer_percent, break_focus, break_rest, break_label, timezone, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET
		   daily_limit_minutes = excluded.daily_limit_minutes,
		   buffer_percent = excluded.buffer_percent,
		   break_focus = excluded.break_focus,
		   break_rest = excluded.break_rest,
		   break_label = excluded.break_label,
		   timezone = excluded.timezone,
		   last_updated = excluded.last_updated`,
		s.OwnerID.String(), s.DailyLimitMinutes, s.BufferPercent,
		s.BreakPreset.Focus, s.BreakPreset.Rest, s.BreakPreset.Label,
		s.Timezone, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListFeedback returns the owner's feedback ascending by submission time.
func (r *SQLiteStudyRepository) ListFeedback(ctx context.Context, owner uuid.UUID) ([]domain.Feedback, error) {
	rows, err := r.dbConn.QueryContext(ctx,
		`SELECT id, owner_id, label, note, plan_version, submitted_at
		 FROM plan_feedback WHERE owner_id = ? ORDER BY submitted_at, id`,
		owner.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var feedback []domain.Feedback
	for rows.Next() {
		var (
			f           domain.Feedback
			id, ownerID string
			label       string
			submittedAt string
		)
		if err := rows.Scan(&id, &ownerID, &label, &f.Note, &f.PlanVersion, &submittedAt); err != nil {
			return nil, err
		}
		if f.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if f.OwnerID, err = uuid.Parse(ownerID); err != nil {
			return nil, err
		}
		f.Label = domain.FeedbackLabel(label)
		if ts, err := time.Parse(time.RFC3339, submittedAt); err == nil {
			f.SubmittedAt = ts
		}
		feedback = append(feedback, f)
	}
	return feedback, rows.Err()
}

// AddFeedback inserts a feedback note.
func (r *SQLiteStudyRepository) AddFeedback(ctx context.Context, f domain.Feedback) error {
	if f.SubmittedAt.IsZero() {
		f.SubmittedAt = time.Now().UTC()
	}
	_, err := r.dbConn.ExecContext(ctx,
		`INSERT INTO plan_feedback (id, owner_id, label, note, plan_version, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.OwnerID.String(), string(f.Label), f.Note, f.PlanVersion,
		f.SubmittedAt.UTC().Format(time.RFC3339),
	)
	return err
}
