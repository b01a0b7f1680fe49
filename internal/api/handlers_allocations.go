// handlers_allocations.go - Allocation query, export and lookup handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/campus-floormap/backend/internal/models"
	"github.com/campus-floormap/backend/internal/store"
)

// AllocationHandlerImpl implements the AllocationHandler interface
type AllocationHandlerImpl struct {
	snapshots SnapshotProvider
	metrics   *Metrics
}

// NewAllocationHandler creates a new allocation handler instance
func NewAllocationHandler(snapshots SnapshotProvider, metrics *Metrics) AllocationHandler {
	return &AllocationHandlerImpl{
		snapshots: snapshots,
		metrics:   metrics,
	}
}

// allocationsResponse is the paginated query result body.
type allocationsResponse struct {
	Allocations []models.AllocationRow `json:"allocations"`
	Page        int                    `json:"page"`
	PageSize    int                    `json:"pageSize"`
	Total       int                    `json:"total"`
}

// buildQuery reads the filter, sort and pagination query parameters.
func buildQuery(c echo.Context) store.Query {
	q := store.Query{
		Docente:      c.QueryParam("docente"),
		Departamento: c.QueryParam("departamento"),
		Horario:      c.QueryParam("horario"),
		FloorPrefix:  c.QueryParam("floor"),
		Room:         c.QueryParam("sala"),
		Search:       c.QueryParam("q"),
		SortBy:       c.QueryParam("sortBy"),
		SortDir:      c.QueryParam("sortDir"),
	}
	q.MinStudents, _ = strconv.Atoi(c.QueryParam("minAlunos"))
	q.MaxStudents, _ = strconv.Atoi(c.QueryParam("maxAlunos"))

	q.Page, _ = strconv.Atoi(c.QueryParam("page"))
	if q.Page < 1 {
		q.Page = 1
	}
	q.PageSize, _ = strconv.Atoi(c.QueryParam("pageSize"))
	if q.PageSize < 1 || q.PageSize > 1000 {
		q.PageSize = 100
	}
	return q
}

// HandleQueryAllocations returns filtered, sorted and paginated allocations.
func (h *AllocationHandlerImpl) HandleQueryAllocations(c echo.Context) error {
	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}

	q := buildQuery(c)
	rows, total, err := state.Store.QueryRows(c.Request().Context(), q)
	if err != nil {
		return NewInternalError("failed to query allocations", err)
	}
	if rows == nil {
		rows = []models.AllocationRow{}
	}

	if h.metrics != nil {
		h.metrics.AllocationQueries.Inc()
	}

	return c.JSON(http.StatusOK, allocationsResponse{
		Allocations: rows,
		Page:        q.Page,
		PageSize:    q.PageSize,
		Total:       total,
	})
}

// HandleAllocationsMsgpack returns one filtered page in MessagePack format
// for bulk consumers.
func (h *AllocationHandlerImpl) HandleAllocationsMsgpack(c echo.Context) error {
	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}

	q := buildQuery(c)
	rows, total, err := state.Store.QueryRows(c.Request().Context(), q)
	if err != nil {
		return NewInternalError("failed to query allocations", err)
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"allocations": rows,
		"page":        q.Page,
		"pageSize":    q.PageSize,
		"total":       total,
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}

	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleExportCSV streams every allocation matching the filters as a CSV
// download, pagination ignored.
func (h *AllocationHandlerImpl) HandleExportCSV(c echo.Context) error {
	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="alocacoes.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	if err := state.Store.ExportCSV(c.Request().Context(), buildQuery(c), c.Response()); err != nil {
		// Headers are already out; log-and-drop is all that's left.
		c.Logger().Errorf("csv export failed: %v", err)
	}

	if h.metrics != nil {
		h.metrics.CSVExports.Inc()
	}
	return nil
}

// HandleLecturers returns the distinct lecturer names for filter dropdowns.
func (h *AllocationHandlerImpl) HandleLecturers(c echo.Context) error {
	return h.distinct(c, "docentes", func(state CurrentState) ([]string, error) {
		return state.Store.Lecturers(c.Request().Context())
	})
}

// HandleDepartments returns the distinct department names for filter dropdowns.
func (h *AllocationHandlerImpl) HandleDepartments(c echo.Context) error {
	return h.distinct(c, "departamentos", func(state CurrentState) ([]string, error) {
		return state.Store.Departments(c.Request().Context())
	})
}

func (h *AllocationHandlerImpl) distinct(c echo.Context, key string, fn func(CurrentState) ([]string, error)) error {
	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}
	values, err := fn(state)
	if err != nil {
		return NewInternalError("failed to query "+key, err)
	}
	if values == nil {
		values = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{key: values})
}
