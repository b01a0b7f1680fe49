// handlers_rooms.go - Room detail and schedule view handlers
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campus-floormap/backend/internal/models"
	"github.com/campus-floormap/backend/internal/schedule"
)

// RoomHandlerImpl implements the RoomHandler interface
type RoomHandlerImpl struct {
	snapshots SnapshotProvider
	now       func() time.Time
}

// NewRoomHandler creates a new room handler instance
func NewRoomHandler(snapshots SnapshotProvider) RoomHandler {
	return &RoomHandlerImpl{
		snapshots: snapshots,
		now:       time.Now,
	}
}

// scheduleEntry is one course occupancy with its schedule code expanded
// for display.
type scheduleEntry struct {
	models.AllocationRow
	Dias    []string `json:"dias"`
	Horas   []string `json:"horas"`
	Turno   string   `json:"turno,omitempty"`
	DiaNums []int    `json:"diaNums"`
}

func newScheduleEntry(row models.AllocationRow) scheduleEntry {
	code := schedule.Parse(row.Horario)
	entry := scheduleEntry{
		AllocationRow: row,
		Dias:          make([]string, 0, len(code.Days)),
		Horas:         code.ClockHours(),
		Turno:         schedule.ShiftNames[code.Shift],
		DiaNums:       code.Days,
	}
	for _, d := range code.Days {
		if name, ok := schedule.DayNames[d]; ok {
			entry.Dias = append(entry.Dias, name)
		}
	}
	if entry.Horas == nil {
		entry.Horas = []string{}
	}
	if entry.DiaNums == nil {
		entry.DiaNums = []int{}
	}
	return entry
}

// HandleRoom returns one room and its full course list.
func (h *RoomHandlerImpl) HandleRoom(c echo.Context) error {
	name := c.Param("room")
	if name == "" {
		return NewValidationError("room")
	}

	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}

	room, rows, err := state.Store.Room(c.Request().Context(), name)
	if err != nil {
		return NewNotFoundError("room", name)
	}

	entries := make([]scheduleEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, newScheduleEntry(r))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"room":    room,
		"courses": entries,
	})
}

// HandleRoomSchedule returns the room's schedule in one of three views:
// "general" (everything), "today" (only courses meeting today) or "byday"
// (grouped per weekday).
func (h *RoomHandlerImpl) HandleRoomSchedule(c echo.Context) error {
	name := c.Param("room")
	if name == "" {
		return NewValidationError("room")
	}

	view := c.QueryParam("view")
	if view == "" {
		view = "general"
	}

	state, ok := h.snapshots.CurrentState()
	if !ok {
		return NewServiceUnavailableError("no allocation snapshot loaded yet")
	}

	_, rows, err := state.Store.Room(c.Request().Context(), name)
	if err != nil {
		return NewNotFoundError("room", name)
	}

	entries := make([]scheduleEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, newScheduleEntry(r))
	}

	switch view {
	case "general":
		return c.JSON(http.StatusOK, map[string]interface{}{
			"view":    "general",
			"room":    name,
			"courses": entries,
		})

	case "today":
		today := schedule.Weekday(h.now())
		filtered := make([]scheduleEntry, 0, len(entries))
		for _, e := range entries {
			if schedule.Parse(e.Horario).OccursOn(today) {
				filtered = append(filtered, e)
			}
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"view":    "today",
			"room":    name,
			"day":     schedule.DayNames[today],
			"courses": filtered,
		})

	case "byday":
		days := make([]map[string]interface{}, 0, 7)
		for day := 1; day <= 7; day++ {
			var onDay []scheduleEntry
			for _, e := range entries {
				if schedule.Parse(e.Horario).OccursOn(day) {
					onDay = append(onDay, e)
				}
			}
			if len(onDay) == 0 {
				continue
			}
			days = append(days, map[string]interface{}{
				"day":     day,
				"name":    schedule.DayNames[day],
				"courses": onDay,
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"view": "byday",
			"room": name,
			"days": days,
		})

	default:
		return NewValidationError("view")
	}
}
