// handlers_snapshot.go - Snapshot refresh and progress handlers
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campus-floormap/backend/internal/models"
)

// SnapshotHandlerImpl implements the SnapshotHandler interface
type SnapshotHandlerImpl struct {
	snapshots SnapshotProvider
	metrics   *Metrics
}

// NewSnapshotHandler creates a new snapshot handler instance
func NewSnapshotHandler(snapshots SnapshotProvider, metrics *Metrics) SnapshotHandler {
	return &SnapshotHandlerImpl{
		snapshots: snapshots,
		metrics:   metrics,
	}
}

// HandleRefresh starts a background fetch of the campus feed. When a
// refresh is already running its snapshot is returned instead.
func (h *SnapshotHandlerImpl) HandleRefresh(c echo.Context) error {
	snap := h.snapshots.Refresh()
	if h.metrics != nil {
		h.metrics.RefreshesStarted.Inc()
	}
	return c.JSON(http.StatusAccepted, snap)
}

// HandleSnapshotStatus returns the status of one snapshot by ID.
func (h *SnapshotHandlerImpl) HandleSnapshotStatus(c echo.Context) error {
	id := c.Param("snapshotId")
	if id == "" {
		return NewValidationError("snapshotId")
	}

	snap, ok := h.snapshots.Get(id)
	if !ok {
		return NewNotFoundError("snapshot", id)
	}

	return c.JSON(http.StatusOK, snap)
}

// HandleCurrentSnapshot returns the snapshot currently serving queries.
func (h *SnapshotHandlerImpl) HandleCurrentSnapshot(c echo.Context) error {
	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}
	return c.JSON(http.StatusOK, state.Snapshot)
}

// HandleSnapshotProgressStream streams refresh progress via SSE.
func (h *SnapshotHandlerImpl) HandleSnapshotProgressStream(c echo.Context) error {
	id := c.Param("snapshotId")
	if id == "" {
		return NewValidationError("snapshotId")
	}

	// Set SSE headers
	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	snap, ok := h.snapshots.Get(id)
	if !ok {
		h.sendSSEError(c, "snapshot not found")
		return nil
	}

	// Send initial status
	h.sendSSEData(c, snap)
	if done(snap) {
		return nil
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	timeout := time.NewTimer(5 * time.Minute)
	defer timeout.Stop()

	for {
		select {
		case <-ticker.C:
			snap, ok := h.snapshots.Get(id)
			if !ok {
				h.sendSSEError(c, "snapshot not found")
				return nil
			}

			h.sendSSEData(c, snap)

			if done(snap) {
				return nil
			}

		case <-timeout.C:
			h.sendSSEError(c, "stream timeout")
			return nil

		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func done(snap models.Snapshot) bool {
	return snap.Status == models.SnapshotStatusReady || snap.Status == models.SnapshotStatusError
}

func (h *SnapshotHandlerImpl) sendSSEData(c echo.Context, data interface{}) {
	jsonData, _ := json.Marshal(data)
	fmt.Fprintf(c.Response(), "data: %s\n\n", jsonData)
	c.Response().Flush()
}

func (h *SnapshotHandlerImpl) sendSSEError(c echo.Context, message string) {
	h.sendSSEData(c, map[string]string{"error": message})
}
