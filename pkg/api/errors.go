package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/tarsy-labs/chartpilot/pkg/registry"
)

// writeError renders the shared {error, message, details?} envelope.
func writeError(c *echo.Context, status int, message string) error {
	return c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// writeRegistryError maps pkg/registry's sentinel errors to the shared
// error envelope at the appropriate status code.
func writeRegistryError(c *echo.Context, err error) error {
	if errors.Is(err, registry.ErrNotFound) {
		return writeError(c, http.StatusNotFound, "job not found")
	}
	if errors.Is(err, registry.ErrNotTerminal) {
		return writeError(c, http.StatusBadRequest, "job is still pending or processing")
	}

	slog.Error("unexpected registry error", "error", err)
	return writeError(c, http.StatusInternalServerError, "internal server error")
}
