package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyflowhq/studyflow/internal/planner/application/commands"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/database"
	"github.com/studyflowhq/studyflow/pkg/config"
)

func newSQLiteFactory(t *testing.T) *RepositoryFactory {
	t.Helper()

	conn, err := database.NewConnection(context.Background(), database.Config{
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewRepositoryFactory(conn)
}

func TestRepositoryFactory_DefaultsToSQLite(t *testing.T) {
	factory := newSQLiteFactory(t)
	assert.Equal(t, database.DriverSQLite, factory.Driver())

	study, err := factory.StudyRepository()
	require.NoError(t, err)
	assert.NotNil(t, study)

	plans, err := factory.PlanRepository()
	require.NoError(t, err)
	assert.NotNil(t, plans)
}

func TestRepositoryFactory_RepositoriesShareConnection(t *testing.T) {
	factory := newSQLiteFactory(t)
	ctx := context.Background()
	require.NoError(t, runMigrations(ctx, factory.Connection()))

	study, err := factory.StudyRepository()
	require.NoError(t, err)

	owner := uuid.New()
	settings := domain.DefaultSettings(owner)
	settings.DailyLimitMinutes = 240
	require.NoError(t, study.PutSettings(ctx, settings))

	got, err := study.GetSettings(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 240, got.DailyLimitMinutes)
}

func TestNewContainerWithConfig_LocalMode(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{
		OwnerID:    "00000000-0000-0000-0000-000000000001",
		SQLitePath: filepath.Join(t.TempDir(), "studyflow.db"),
	}

	container, err := NewContainerWithConfig(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.Equal(t, database.DriverSQLite, container.DBDriver)
	assert.NotNil(t, container.RebuildPlan)
	assert.NotNil(t, container.GetPlan)
	assert.NotNil(t, container.Metrics)
	assert.Nil(t, container.RedisClient)

	// Migrations ran; a rebuild with no inputs yields an empty version 1 plan.
	plan, err := container.RebuildPlan.Handle(ctx, commands.RebuildPlanCommand{OwnerID: container.Owner})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.PlanVersion)
	assert.Empty(t, plan.Sessions)
}

func TestNewContainerWithConfig_RejectsBadOwner(t *testing.T) {
	cfg := &config.Config{
		OwnerID:    "not-a-uuid",
		SQLitePath: filepath.Join(t.TempDir(), "studyflow.db"),
	}

	_, err := NewContainerWithConfig(context.Background(), cfg, nil)
	assert.Error(t, err)
}
