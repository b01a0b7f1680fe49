// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campus-floormap/backend/internal/models"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Snapshots    SnapshotProvider
	Floors       []models.Floor
	ProcessedDir string
	Registry     *prometheus.Registry
	Version      string
	Logger       *zap.Logger
}

// Handlers holds all handler instances
type Handlers struct {
	Health     HealthHandler
	Floor      FloorHandler
	Room       RoomHandler
	Allocation AllocationHandler
	Snapshot   SnapshotHandler
	WS         *WebSocketHandler
	Metrics    *Metrics
	registry   *prometheus.Registry
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	floors := deps.Floors
	if len(floors) == 0 {
		floors = models.DefaultFloors()
	}
	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics := NewMetrics(registry)

	return &Handlers{
		Health:     NewHealthHandler(deps.Version, deps.Snapshots),
		Floor:      NewFloorHandler(floors, deps.ProcessedDir, deps.Snapshots),
		Room:       NewRoomHandler(deps.Snapshots),
		Allocation: NewAllocationHandler(deps.Snapshots, metrics),
		Snapshot:   NewSnapshotHandler(deps.Snapshots, metrics),
		WS:         NewWebSocketHandler(metrics, deps.Logger),
		Metrics:    metrics,
		registry:   registry,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check, outside /api for the container healthcheck
	e.GET("/health", handlers.Health.HandleHealth)
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Floor routes
	floorGroup := e.Group("/api/floors")
	floorGroup.GET("", handlers.Floor.HandleListFloors)
	floorGroup.GET("/:floor/map", handlers.Floor.HandleFloorMap)
	floorGroup.GET("/:floor/rooms", handlers.Floor.HandleFloorRooms)

	// Room routes
	roomGroup := e.Group("/api/rooms")
	roomGroup.GET("/:room", handlers.Room.HandleRoom)
	roomGroup.GET("/:room/schedule", handlers.Room.HandleRoomSchedule)

	// Allocation query routes
	allocGroup := e.Group("/api/allocations")
	allocGroup.GET("", handlers.Allocation.HandleQueryAllocations)
	allocGroup.GET("/msgpack", handlers.Allocation.HandleAllocationsMsgpack)
	allocGroup.GET("/export", handlers.Allocation.HandleExportCSV)
	allocGroup.GET("/docentes", handlers.Allocation.HandleLecturers)
	allocGroup.GET("/departamentos", handlers.Allocation.HandleDepartments)

	// Snapshot routes
	snapGroup := e.Group("/api/snapshots")
	snapGroup.POST("/refresh", handlers.Snapshot.HandleRefresh)
	snapGroup.GET("/current", handlers.Snapshot.HandleCurrentSnapshot)
	snapGroup.GET("/:snapshotId", handlers.Snapshot.HandleSnapshotStatus)
	snapGroup.GET("/:snapshotId/progress", handlers.Snapshot.HandleSnapshotProgressStream)

	// Push channel
	e.GET("/api/ws", handlers.WS.HandleWS)

	// Prometheus metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(handlers.registry, promhttp.HandlerOpts{})))
}

// SetupMiddleware configures the central error handler.
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
