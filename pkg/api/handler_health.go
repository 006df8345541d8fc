package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/chartpilot/pkg/metrics"
)

// healthHandler handles GET /health.
func (s *Server) healthHandler(c *echo.Context) error {
	return c.JSON(http.StatusOK, &HealthResponse{
		Status:    "healthy",
		Timestamp: s.clock.Now(),
	})
}

// metricsHandler handles GET /metrics (added), exposing the Prometheus
// instruments registered in pkg/metrics.
func (s *Server) metricsHandler(c *echo.Context) error {
	metrics.Handler().ServeHTTP(c.Response(), c.Request())
	return nil
}
