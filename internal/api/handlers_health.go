// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version   string
	snapshots SnapshotProvider
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, snapshots SnapshotProvider) HealthHandler {
	return &HealthHandlerImpl{
		version:   version,
		snapshots: snapshots,
	}
}

// HandleHealth returns server health status. The container healthcheck
// polls this endpoint.
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status":  "ok",
		"version": h.version,
	}
	if state, ok := h.snapshots.CurrentState(); ok {
		body["snapshot"] = map[string]interface{}{
			"id":        state.Snapshot.ID,
			"source":    state.Snapshot.Source,
			"fetchedAt": state.Snapshot.FetchedAt,
			"rows":      state.Store.Len(),
		}
	}
	return c.JSON(http.StatusOK, body)
}
