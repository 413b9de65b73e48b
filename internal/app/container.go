package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/studyflowhq/studyflow/internal/planner/application/commands"
	"github.com/studyflowhq/studyflow/internal/planner/application/queries"
	"github.com/studyflowhq/studyflow/internal/planner/application/services"
	"github.com/studyflowhq/studyflow/internal/planner/domain"
	"github.com/studyflowhq/studyflow/internal/planner/infrastructure/cache"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/database"
	_ "github.com/studyflowhq/studyflow/internal/shared/infrastructure/database/postgres" // Register Postgres driver
	_ "github.com/studyflowhq/studyflow/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/eventbus"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/migrations"
	"github.com/studyflowhq/studyflow/pkg/config"
	"github.com/studyflowhq/studyflow/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics observability.Metrics

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis
	RedisClient *redis.Client

	// Repositories
	StudyRepo StudyStore
	PlanRepo  domain.PlanRepository

	// Publishers
	EventPublisher eventbus.Publisher

	// The single-user deployment owner; overridable per request.
	Owner uuid.UUID

	// Command handlers
	RebuildPlan   *commands.RebuildPlanHandler
	UpdateStatus  *commands.UpdateSessionStatusHandler
	RemovePlanRef *commands.RemovePlanRefsHandler

	// Query handlers
	GetPlan     *queries.GetPlanHandler
	PlanMetrics *queries.PlanMetricsHandler
	ExportICS   *queries.ExportICSHandler
}

// NewContainer wires the application: config, logger, database (SQLite by
// default, PostgreSQL when DATABASE_URL points at one), migrations, optional
// Redis cache and event publisher, and all handlers.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := observability.LoggerFromEnv()
	return NewContainerWithConfig(ctx, cfg, logger)
}

// NewContainerWithConfig wires the application from an explicit config.
func NewContainerWithConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	owner, err := uuid.Parse(cfg.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("parse owner id %q: %w", cfg.OwnerID, err)
	}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := runMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	factory := NewRepositoryFactory(conn)
	studyRepo, err := factory.StudyRepository()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	planRepo, err := factory.PlanRepository()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Metrics:   observability.NewInMemoryMetrics(),
		DBConn:    conn,
		DBDriver:  conn.Driver(),
		StudyRepo: studyRepo,
		PlanRepo:  planRepo,
		Owner:     owner,
	}

	if cfg.CacheEnabled {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		c.RedisClient = redis.NewClient(opts)
		c.PlanRepo = cache.NewRedisPlanCache(c.PlanRepo, c.RedisClient, logger)
		logger.Info("plan cache enabled", "redis", opts.Addr)
	}

	if cfg.EventsEnabled {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ unavailable, events disabled", "error", err)
			c.EventPublisher = eventbus.NoopPublisher{}
		} else {
			c.EventPublisher = publisher
		}
	} else {
		bus := eventbus.NewInProcessEventBus(logger)
		bus.Subscribe(commands.PlanRebuiltRoutingKey, func(ctx context.Context, payload []byte) error {
			logger.Debug("plan rebuilt event", "payload_bytes", len(payload))
			return nil
		})
		c.EventPublisher = bus
	}

	generator := services.NewGenerator(logger)

	c.RebuildPlan = commands.NewRebuildPlanHandler(
		c.StudyRepo, c.StudyRepo, c.StudyRepo, c.StudyRepo, c.StudyRepo,
		c.PlanRepo, generator, c.EventPublisher, logger,
	).WithMetrics(c.Metrics)
	c.UpdateStatus = commands.NewUpdateSessionStatusHandler(c.PlanRepo, logger).WithMetrics(c.Metrics)
	c.RemovePlanRef = commands.NewRemovePlanRefsHandler(c.PlanRepo, c.EventPublisher, logger)

	c.GetPlan = queries.NewGetPlanHandler(c.PlanRepo)
	c.PlanMetrics = queries.NewPlanMetricsHandler(c.PlanRepo, c.StudyRepo, c.StudyRepo, c.StudyRepo)
	c.ExportICS = queries.NewExportICSHandler(c.PlanRepo)

	logger.Info("container initialized",
		"driver", c.DBDriver,
		"owner_id", owner,
	)
	return c, nil
}

// runMigrations applies the schema for whichever backend is connected.
func runMigrations(ctx context.Context, conn database.Connection) error {
	switch conn.Driver() {
	case database.DriverSQLite:
		sqliteConn, ok := conn.(interface{ DB() *sql.DB })
		if !ok {
			return fmt.Errorf("sqlite connection does not expose DB()")
		}
		return migrations.RunSQLiteMigrations(ctx, sqliteConn.DB())

	case database.DriverPostgres:
		pgConn, ok := conn.(interface{ Pool() *pgxpool.Pool })
		if !ok {
			return fmt.Errorf("postgres connection does not expose Pool()")
		}
		return migrations.RunPostgresMigrations(ctx, pgConn.Pool())

	default:
		return fmt.Errorf("unsupported driver: %s", conn.Driver())
	}
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.RedisClient != nil {
		_ = c.RedisClient.Close()
	}
	if c.EventPublisher != nil {
		_ = c.EventPublisher.Close()
	}
	if c.DBConn != nil {
		return c.DBConn.Close()
	}
	return nil
}
