package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/database"
)

// PostgresPlanRepository implements domain.PlanRepository using PostgreSQL.
type PostgresPlanRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPlanRepository creates a new PostgreSQL plan repository.
func NewPostgresPlanRepository(pool *pgxpool.Pool) *PostgresPlanRepository {
	return &PostgresPlanRepository{pool: pool}
}

const pgPlanColumns = "id, owner_id, plan_version, sessions, unscheduled_tasks, suggestions, generated_at, created_at"

// GetLatest returns the owner's newest plan or domain.ErrPlanNotFound.
func (r *PostgresPlanRepository) GetLatest(ctx context.Context, owner uuid.UUID) (*domain.PlanRecord, error) {
	row := r.pool.QueryRow(ctx,
		"SELECT "+pgPlanColumns+" FROM plans WHERE owner_id = $1 ORDER BY plan_version DESC LIMIT 1",
		owner,
	)
	plan, err := scanPostgresPlan(row)
	if database.IsNoRows(err) {
		return nil, domain.ErrPlanNotFound
	}
	return plan, err
}

// ListPlans returns up to limit plans, newest first.
func (r *PostgresPlanRepository) ListPlans(ctx context.Context, owner uuid.UUID, limit int) ([]*domain.PlanRecord, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+pgPlanColumns+" FROM plans WHERE owner_id = $1 ORDER BY plan_version DESC LIMIT $2",
		owner, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*domain.PlanRecord
	for rows.Next() {
		plan, err := scanPostgresPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Save persists the plan, assigning the owner's next version inside a single
// transaction. The unique (owner_id, plan_version) constraint arbitrates
// concurrent rebuilds; the loser retries once at the next number.
func (r *PostgresPlanRepository) Save(ctx context.Context, plan *domain.PlanRecord) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.saveOnce(ctx, plan)
		if err == nil || !isPostgresUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (r *PostgresPlanRepository) saveOnce(ctx context.Context, plan *domain.PlanRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var maxVersion int
	err = tx.QueryRow(ctx,
		"SELECT COALESCE(MAX(plan_version), 0) FROM plans WHERE owner_id = $1",
		plan.OwnerID,
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

	_, err = tx.Exec(ctx,
		`INSERT INTO plans (id, owner_id, plan_version, sessions, unscheduled_tasks, suggestions, generated_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		plan.ID,
		plan.OwnerID,
		plan.PlanVersion,
		sessions,
		unscheduled,
		suggestions,
		plan.GeneratedAt.Time(),
		plan.CreatedAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// UpdateSessionStatus mutates one session of the latest plan.
func (r *PostgresPlanRepository) UpdateSessionStatus(ctx context.Context, owner uuid.UUID, sessionID string, status domain.SessionStatus) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var planID string
	var rawSessions []byte
	err = tx.QueryRow(ctx,
		"SELECT id, sessions FROM plans WHERE owner_id = $1 ORDER BY plan_version DESC LIMIT 1 FOR UPDATE",
		owner,
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
	if _, err := tx.Exec(ctx, "UPDATE plans SET sessions = $1 WHERE id = $2", encoded, planID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RemoveTaskFromPlans strips the task's sessions and unscheduled entries from
// every stored plan of the owner.
func (r *PostgresPlanRepository) RemoveTaskFromPlans(ctx context.Context, owner uuid.UUID, taskID string) error {
	return r.rewritePlans(ctx, owner, func(p *planPayload) bool {
		return p.removeTask(taskID)
	})
}

// RemoveHabitFromPlans strips the habit's sessions from every stored plan of
// the owner.
func (r *PostgresPlanRepository) RemoveHabitFromPlans(ctx context.Context, owner uuid.UUID, habitID string) error {
	return r.rewritePlans(ctx, owner, func(p *planPayload) bool {
		return p.removeHabit(habitID)
	})
}

func (r *PostgresPlanRepository) rewritePlans(ctx context.Context, owner uuid.UUID, mutate func(*planPayload) bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		"SELECT id, sessions, unscheduled_tasks FROM plans WHERE owner_id = $1 FOR UPDATE",
		owner,
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
		_, err = tx.Exec(ctx,
			"UPDATE plans SET sessions = $1, unscheduled_tasks = $2 WHERE id = $3",
			sessions, unscheduled, u.id,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func isPostgresUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type postgresScanner interface {
	Scan(dest ...any) error
}

func scanPostgresPlan(row postgresScanner) (*domain.PlanRecord, error) {
	var (
		plan           domain.PlanRecord
		rawSessions    []byte
		rawUnscheduled []byte
		rawSuggestions []byte
		generatedAt    time.Time
	)
	err := row.Scan(&plan.ID, &plan.OwnerID, &plan.PlanVersion, &rawSessions, &rawUnscheduled, &rawSuggestions, &generatedAt, &plan.CreatedAt)
	if err != nil {
		return nil, err
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
	plan.GeneratedAt = domain.NewISOTime(generatedAt)
	return &plan, nil
}
