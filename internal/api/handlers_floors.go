// handlers_floors.go - Floor list, floor maps and per-floor room handlers
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campus-floormap/backend/internal/models"
)

// FloorHandlerImpl implements the FloorHandler interface
type FloorHandlerImpl struct {
	floors       []models.Floor
	processedDir string
	snapshots    SnapshotProvider
}

// NewFloorHandler creates a new floor handler. processedDir is where the
// generator wrote the floor SVGs; this handler only reads from it.
func NewFloorHandler(floors []models.Floor, processedDir string, snapshots SnapshotProvider) FloorHandler {
	return &FloorHandlerImpl{
		floors:       floors,
		processedDir: processedDir,
		snapshots:    snapshots,
	}
}

type floorEntry struct {
	models.Floor
	MapReady bool `json:"mapReady"`
}

// HandleListFloors returns the building's floors, bottom to top, each
// flagged with whether the generator has produced its SVG.
func (h *FloorHandlerImpl) HandleListFloors(c echo.Context) error {
	entries := make([]floorEntry, 0, len(h.floors))
	for _, f := range h.floors {
		_, err := os.Stat(filepath.Join(h.processedDir, f.Key+".svg"))
		entries = append(entries, floorEntry{Floor: f, MapReady: err == nil})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"floors": entries,
	})
}

// HandleFloorMap serves the generated SVG for a floor.
func (h *FloorHandlerImpl) HandleFloorMap(c echo.Context) error {
	floor, ok := h.floorByKey(c.Param("floor"))
	if !ok {
		return NewNotFoundError("floor", c.Param("floor"))
	}

	path := filepath.Join(h.processedDir, floor.Key+".svg")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewNotFoundError("floor map", floor.Key)
	}
	if err != nil {
		return NewInternalError("failed to read floor map", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, "image/svg+xml", data)
}

// HandleFloorRooms returns the rooms allocated on a floor, with course counts.
func (h *FloorHandlerImpl) HandleFloorRooms(c echo.Context) error {
	floor, ok := h.floorByKey(c.Param("floor"))
	if !ok {
		return NewNotFoundError("floor", c.Param("floor"))
	}

	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}

	rooms, err := state.Store.Rooms(c.Request().Context(), floor.Prefix)
	if err != nil {
		return NewInternalError("failed to query rooms", err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"floor": floor,
		"rooms": rooms,
	})
}

func (h *FloorHandlerImpl) floorByKey(key string) (models.Floor, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, f := range h.floors {
		if f.Key == key {
			return f, true
		}
	}
	return models.Floor{}, false
}
