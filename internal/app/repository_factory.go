package app

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	plannerPersistence "github.com/studyflowhq/studyflow/internal/planner/infrastructure/persistence"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/database"
)

// StudyStore bundles the planner's input repositories with the write methods
// the CLI and seeders use. Both driver implementations satisfy it.
type StudyStore interface {
	domain.TaskRepository
	domain.HabitRepository
	domain.SlotRepository
	domain.SettingsRepository
	domain.FeedbackRepository

	CreateTask(ctx context.Context, t domain.Task) error
	CreateHabit(ctx context.Context, h domain.Habit) error
	CreateSlot(ctx context.Context, s domain.FreeSlot) error
	PutSettings(ctx context.Context, s domain.Settings) error
	AddFeedback(ctx context.Context, f domain.Feedback) error
}

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// StudyRepository creates the study-input store for the configured driver.
func (f *RepositoryFactory) StudyRepository() (StudyStore, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return plannerPersistence.NewPostgresStudyRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return plannerPersistence.NewSQLiteStudyRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// PlanRepository creates the plan store for the configured driver.
func (f *RepositoryFactory) PlanRepository() (domain.PlanRepository, error) {
	switch f.driver {
	case database.DriverPostgres:
		pool, err := f.getPostgresPool()
		if err != nil {
			return nil, err
		}
		return plannerPersistence.NewPostgresPlanRepository(pool), nil

	case database.DriverSQLite:
		db, err := f.getSQLiteDB()
		if err != nil {
			return nil, err
		}
		return plannerPersistence.NewSQLitePlanRepository(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// Helper methods to get underlying database connections

func (f *RepositoryFactory) getPostgresPool() (*pgxpool.Pool, error) {
	pgConn, ok := f.conn.(interface{ Pool() *pgxpool.Pool })
	if !ok {
		return nil, fmt.Errorf("postgres connection does not expose Pool()")
	}
	return pgConn.Pool(), nil
}

func (f *RepositoryFactory) getSQLiteDB() (*sql.DB, error) {
	sqliteConn, ok := f.conn.(interface{ DB() *sql.DB })
	if !ok {
		return nil, fmt.Errorf("sqlite connection does not expose DB()")
	}
	return sqliteConn.DB(), nil
}

// Driver returns the database driver type.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
