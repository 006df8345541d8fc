// Package api is chartpilot's HTTP surface: job submission and polling,
// database introspection status, and health/metrics, built on echo/v5.
package api

import (
	"context"
	"net"
	"net/http"

	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/tarsy-labs/chartpilot/pkg/catalog"
	"github.com/tarsy-labs/chartpilot/pkg/config"
	"github.com/tarsy-labs/chartpilot/pkg/database"
	"github.com/tarsy-labs/chartpilot/pkg/models"
	"github.com/tarsy-labs/chartpilot/pkg/registry"
)

// FileMetadataStore is the subset of *database.Client the database-status
// endpoint needs, narrowed so tests can fake it without a real pool
// (grounded on pkg/query.Store's same narrowing of *database.Client).
type FileMetadataStore interface {
	ListFileMetadata(ctx context.Context) ([]database.FileMetadata, error)
	DatabasePath() string
}

// JobOrchestrator is the subset of *pipeline.Orchestrator the HTTP surface
// drives: submit a new job and request cooperative cancellation of one
// already in flight.
type JobOrchestrator interface {
	Submit(ctx context.Context, prompt models.Prompt) *models.Job
	Cancel(jobID string) bool
}

// Server is the HTTP API server.
type Server struct {
	echo         *echo.Echo
	httpServer   *http.Server
	cfg          *config.APIConfig
	dbClient     FileMetadataStore
	catalog      *catalog.Introspector
	registry     *registry.Registry
	orchestrator JobOrchestrator
	clock        clockwork.Clock
}

// NewServer creates a new API server with Echo v5, wiring every collaborator
// the job-submission and introspection endpoints need.
func NewServer(
	cfg *config.APIConfig,
	dbClient FileMetadataStore,
	catalogIntrospector *catalog.Introspector,
	reg *registry.Registry,
	orchestrator JobOrchestrator,
	clock clockwork.Clock,
) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	e := echo.New()

	s := &Server{
		echo:         e,
		cfg:          cfg,
		dbClient:     dbClient,
		catalog:      catalogIntrospector,
		registry:     reg,
		orchestrator: orchestrator,
		clock:        clock,
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all API routes.
func (s *Server) setupRoutes() {
	// Server-wide body size limit (1 MB): chart prompts are short text, not
	// bulk data upload, so this rejects accidental multi-MB payloads at the
	// HTTP read level.
	s.echo.Use(middleware.BodyLimit(1024 * 1024))
	s.echo.Use(securityHeaders())

	if s.cfg != nil && len(s.cfg.AllowedOrigins) > 0 {
		s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.cfg.AllowedOrigins,
		}))
	}

	s.echo.GET("/health", s.healthHandler)
	s.echo.GET("/metrics", s.metricsHandler)

	s.echo.POST("/generate-chart", s.generateChartHandler)
	s.echo.GET("/job-status/:job_id", s.jobStatusHandler)
	s.echo.GET("/database-status", s.databaseStatusHandler)
	s.echo.GET("/jobs", s.listJobsHandler)
	s.echo.DELETE("/jobs/:job_id", s.deleteJobHandler)
	s.echo.POST("/jobs/:job_id/cancel", s.cancelJobHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.echo,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener.
// Used by test infrastructure to serve on a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
