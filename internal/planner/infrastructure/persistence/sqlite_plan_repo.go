package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/database"
)

// SQLitePlanRepository implements domain.PlanRepository using SQLite.
type SQLitePlanRepository struct {
	dbConn *sql.DB
}

// NewSQLitePlanRepository creates a new SQLite plan repository.
func NewSQLitePlanRepository(dbConn *sql.DB) *SQLitePlanRepository {
	return &SQLitePlanRepository{dbConn: dbConn}
}

const sqlitePlanColumns = "id, owner_id, plan_version, sessions, unscheduled_tasks, suggestions, generated_at, created_at"

// GetLatest returns the owner's newest plan or domain.ErrPlanNotFound.
func (r *SQLitePlanRepository) GetLatest(ctx context.Context, owner uuid.UUID) (*domain.PlanRecord, error) {
	row := r.dbConn.QueryRowContext(ctx,
		"SELECT "+sqlitePlanColumns+" FROM plans WHERE owner_id = ? ORDER BY plan_version DESC LIMIT 1",
		owner.String(),
	)
	plan, err := scanSQLitePlan(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrPlanNotFound
	}
	return plan, err
}

// ListPlans returns up to limit plans, newest first.
func (r *SQLitePlanRepository) ListPlans(ctx context.Context, owner uuid.UUID, limit int) ([]*domain.PlanRecord, error) {
	rows, err := r.dbConn.QueryContext(ctx,
		"SELECT "+sqlitePlanColumns+" FROM plans WHERE owner_id = ? ORDER BY plan_version DESC LIMIT ?",
		owner.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*domain.PlanRecord
	for rows.Next() {
		plan, err := scanSQLitePlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Save persists the plan, assigning the owner's next version inside a single
// transaction. A concurrent rebuild racing on the same version triggers one
// retry at the next number.
func (r *SQLitePlanRepository) Save(ctx context.Context, plan *domain.PlanRecord) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.saveOnce(ctx, plan)
		if err == nil || !isSQLiteUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (r *SQLitePlanRepository) saveOnce(ctx context.Context, plan *domain.PlanRecord) error {
	tx, err := r.dbConn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var maxVersion int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(plan_version), 0) FROM plans WHERE owner_id = ?",
		plan.OwnerID.String(),
	).Scan(&maxVersion)
	if err != nil {
		return err
	}

	assignVersion(plan, maxVersion+1)

	sessions, err := encodeSessions(plan.Sessions)
	if err != nil {
		return err
	}
	unscheduled, err := encodeUnscheduled(plan.UnscheduledTasks)
	if err != nil {
		return err
	}
	suggestions, err := encodeSuggestions(plan.Suggestions)
	if err != nil {
		return err
	}

	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO plans (id, owner_id, plan_version, sessions, unscheduled_tasks, suggestions, generated_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID,
		plan.OwnerID.String(),
		plan.PlanVersion,
		string(sessions),
		string(unscheduled),
		string(suggestions),
		plan.GeneratedAt.String(),
		plan.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// UpdateSessionStatus mutates one session of the latest plan.
func (r *SQLitePlanRepository) UpdateSessionStatus(ctx context.Context, owner uuid.UUID, sessionID string, status domain.SessionStatus) error {
	tx, err := r.dbConn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var planID string
	var rawSessions []byte
	err = tx.QueryRowContext(ctx,
		"SELECT id, sessions FROM plans WHERE owner_id = ? ORDER BY plan_version DESC LIMIT 1",
		owner.String(),
	).Scan(&planID, &rawSessions)
	if database.IsNoRows(err) {
		return domain.ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	sessions, err := decodeSessions(rawSessions)
	if err != nil {
		return err
	}
	if !applyStatus(sessions, sessionID, status) {
		return domain.ErrSessionNotFound
	}

	encoded, err := encodeSessions(sessions)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE plans SET sessions = ? WHERE id = ?", string(encoded), planID); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveTaskFromPlans strips the task's sessions and unscheduled entries from
// every stored plan of the owner.
func (r *SQLitePlanRepository) RemoveTaskFromPlans(ctx context.Context, owner uuid.UUID, taskID string) error {
	return r.rewritePlans(ctx, owner, func(p *planPayload) bool {
		return p.removeTask(taskID)
	})
}

// RemoveHabitFromPlans strips the habit's sessions from every stored plan of
// the owner.
func (r *SQLitePlanRepository) RemoveHabitFromPlans(ctx context.Context, owner uuid.UUID, habitID string) error {
	return r.rewritePlans(ctx, owner, func(p *planPayload) bool {
		return p.removeHabit(habitID)
	})
}

func (r *SQLitePlanRepository) rewritePlans(ctx context.Context, owner uuid.UUID, mutate func(*planPayload) bool) error {
	tx, err := r.dbConn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx,
		"SELECT id, sessions, unscheduled_tasks FROM plans WHERE owner_id = ?",
		owner.String(),
	)
	if err != nil {
		return err
	}

	type pending struct {
		id      string
		payload planPayload
	}
	var updates []pending
	for rows.Next() {
		var id string
		var rawSessions, rawUnscheduled []byte
		if err := rows.Scan(&id, &rawSessions, &rawUnscheduled); err != nil {
			rows.Close()
			return err
		}
		payload, err := decodePlanPayload(rawSessions, rawUnscheduled)
		if err != nil {
			rows.Close()
			return err
		}
		if mutate(&payload) {
			updates = append(updates, pending{id: id, payload: payload})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, u := range updates {
		sessions, unscheduled, err := u.payload.encode()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			"UPDATE plans SET sessions = ?, unscheduled_tasks = ? WHERE id = ?",
			string(sessions), string(unscheduled), u.id,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func isSQLiteUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type sqliteScanner interface {
	Scan(dest ...any) error
}

func scanSQLitePlan(row sqliteScanner) (*domain.PlanRecord, error) {
	var (
		plan           domain.PlanRecord
		ownerID        string
		rawSessions    []byte
		rawUnscheduled []byte
		rawSuggestions []byte
		generatedAt    string
		createdAt      string
	)
	err := row.Scan(&plan.ID, &ownerID, &plan.PlanVersion, &rawSessions, &rawUnscheduled, &rawSuggestions, &generatedAt, &createdAt)
	if err != nil {
		return nil, err
	}

	plan.OwnerID, err = uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner id: %w", err)
	}
	if plan.Sessions, err = decodeSessions(rawSessions); err != nil {
		return nil, err
	}
	if plan.UnscheduledTasks, err = decodeUnscheduled(rawUnscheduled); err != nil {
		return nil, err
	}
	if plan.Suggestions, err = decodeSuggestions(rawSuggestions); err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339, generatedAt); err == nil {
		plan.GeneratedAt = domain.NewISOTime(ts)
	}
	if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
		plan.CreatedAt = ts
	}
	return &plan, nil
}
