package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/studyflowhq/studyflow/adapter/api"
	"github.com/studyflowhq/studyflow/internal/app"
	"github.com/studyflowhq/studyflow/internal/shared/infrastructure/eventbus"
	"github.com/studyflowhq/studyflow/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the StudyFlow HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		container, err := app.NewContainer(ctx)
		if err != nil {
			return err
		}
		defer container.Close()

		planHandler := api.NewPlanHandler(api.PlanHandlerConfig{
			Rebuild:      container.RebuildPlan,
			UpdateStatus: container.UpdateStatus,
			GetPlan:      container.GetPlan,
			ExportICS:    container.ExportICS,
			Tasks:        container.StudyRepo,
			Slots:        container.StudyRepo,
			DefaultOwner: container.Owner,
			Logger:       container.Logger,
		})
		metricsHandler := api.NewMetricsHandler(container.PlanMetrics, container.Owner, container.Logger)

		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = container.Config.APIAddr
		serverCfg.Metrics = container.Metrics
		server := api.NewServer(serverCfg, planHandler, metricsHandler, container.Logger)

		server.Health().Register("database", observability.DatabaseHealthChecker(container.DBConn.Ping))
		if container.RedisClient != nil {
			server.Health().Register("redis", observability.RedisHealthChecker(func(ctx context.Context) error {
				return container.RedisClient.Ping(ctx).Err()
			}))
		}
		if rabbit, ok := container.EventPublisher.(*eventbus.RabbitMQPublisher); ok {
			server.Health().Register("rabbitmq", observability.RabbitMQHealthChecker(rabbit.Healthy))
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), container.Config.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}
