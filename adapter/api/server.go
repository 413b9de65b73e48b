// Package api provides the StudyFlow HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/studyflowhq/studyflow/pkg/observability"
)

// Server is the HTTP API server for the planner.
type Server struct {
	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server
	logger  *slog.Logger
	plans   *PlanHandler
	metrics *MetricsHandler
	health  *observability.HealthRegistry
	sink    observability.Metrics
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Metrics      observability.Metrics
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new planner API server.
func NewServer(cfg ServerConfig, plans *PlanHandler, metrics *MetricsHandler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	sink := cfg.Metrics
	if sink == nil {
		sink = observability.NoopMetrics{}
	}

	mux := http.NewServeMux()

	s := &Server{
		mux:     mux,
		logger:  logger,
		plans:   plans,
		metrics: metrics,
		health:  observability.NewHealthRegistry(),
		sink:    sink,
	}

	s.registerRoutes()
	s.handler = s.withRequestContext(mux)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /plan/latest", s.plans.Latest)
	s.mux.HandleFunc("GET /plan/history", s.plans.History)
	s.mux.HandleFunc("POST /plan/rebuild", s.plans.Rebuild)
	s.mux.HandleFunc("PATCH /plan/sessions/{sessionID}/status", s.plans.UpdateSessionStatus)
	s.mux.HandleFunc("GET /plan/export/ics", s.plans.ExportICS)

	s.mux.HandleFunc("GET /metrics/plan", s.metrics.PlanMetrics)
}

// Handler exposes the full middleware chain for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Health exposes the registry so callers can attach dependency checks.
func (s *Server) Health() *observability.HealthRegistry {
	return s.health
}

// withRequestContext stamps every request with request and correlation IDs,
// feeds the timing into the metrics sink, and logs the outcome.
func (s *Server) withRequestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := observability.NewRequestContext(r.Context(), r.Header.Get("X-Correlation-ID"))
		timer := observability.StartTimer("http." + r.Method).
			WithMetrics(s.sink).
			WithTags(observability.T("path", r.URL.Path))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))

		duration := timer.Stop()
		s.logger.Debug("request handled",
			"method", r.Method,
			"path", r.URL.Path,
			observability.StatusKey, rec.status,
			observability.RequestIDKey, observability.RequestIDFromContext(ctx),
			observability.CorrelationIDKey, observability.CorrelationIDFromContext(ctx),
			observability.DurationKey, duration.Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// handleHealth runs the registered dependency checks. With no checks
// registered the endpoint reports healthy, which keeps zero-config local
// mode green.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := s.health.GetOverallHealth(r.Context())
	status := http.StatusOK
	if health.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting planner API server",
		"addr", s.server.Addr,
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down planner API server")
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", "error", err)
		}
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error":   http.StatusText(status),
		"message": message,
	})
}
