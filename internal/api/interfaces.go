// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/campus-floormap/backend/internal/models"
	"github.com/campus-floormap/backend/internal/snapshot"
	"github.com/campus-floormap/backend/internal/store"
)

// FloorHandler serves the floor list and the generated floor maps.
type FloorHandler interface {
	HandleListFloors(c echo.Context) error
	HandleFloorMap(c echo.Context) error
	HandleFloorRooms(c echo.Context) error
}

// RoomHandler serves room details and the per-room schedule views.
type RoomHandler interface {
	HandleRoom(c echo.Context) error
	HandleRoomSchedule(c echo.Context) error
}

// AllocationHandler serves filtered allocation queries and exports.
type AllocationHandler interface {
	HandleQueryAllocations(c echo.Context) error
	HandleAllocationsMsgpack(c echo.Context) error
	HandleExportCSV(c echo.Context) error
	HandleLecturers(c echo.Context) error
	HandleDepartments(c echo.Context) error
}

// SnapshotHandler manages snapshot refreshes and progress streaming.
type SnapshotHandler interface {
	HandleRefresh(c echo.Context) error
	HandleSnapshotStatus(c echo.Context) error
	HandleSnapshotProgressStream(c echo.Context) error
	HandleCurrentSnapshot(c echo.Context) error
}

// HealthHandler handles health check operations.
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// CurrentState is the ready snapshot view handlers work against.
type CurrentState struct {
	Snapshot models.Snapshot
	Center   models.Center
	Store    store.Querier
}

// SnapshotProvider abstracts the snapshot manager so handlers can be
// tested against a mock.
type SnapshotProvider interface {
	Refresh() *models.Snapshot
	Get(id string) (models.Snapshot, bool)
	CurrentState() (CurrentState, bool)
}

// ManagerProvider adapts *snapshot.Manager to SnapshotProvider.
type ManagerProvider struct {
	Manager *snapshot.Manager
}

func (p ManagerProvider) Refresh() *models.Snapshot { return p.Manager.Refresh() }

func (p ManagerProvider) Get(id string) (models.Snapshot, bool) { return p.Manager.Get(id) }

func (p ManagerProvider) CurrentState() (CurrentState, bool) {
	state, ok := p.Manager.Current()
	if !ok {
		return CurrentState{}, false
	}
	return CurrentState{
		Snapshot: *state.Snapshot,
		Center:   state.Center,
		Store:    state.Store,
	}, true
}
