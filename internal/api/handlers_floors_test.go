// handlers_floors_test.go - Tests for floor handlers
package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-floormap/backend/internal/models"
)

func TestFloorHandler_HandleListFloors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terreo.svg"), []byte("<svg/>"), 0644))

	h := NewFloorHandler(models.DefaultFloors(), dir, newMockSnapshots(newMockQuerier()))

	rec, err := doRequest(t, http.MethodGet, "/api/floors", h.HandleListFloors)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"subsolo"`)
	assert.Contains(t, rec.Body.String(), `"Terceiro Andar"`)
	// Only terreo has a generated SVG in this temp dir.
	assert.Equal(t, 1, strings.Count(rec.Body.String(), `"mapReady":true`))
	assert.Contains(t, rec.Body.String(), `"mapReady":false`)
}

func TestFloorHandler_HandleFloorMap(t *testing.T) {
	dir := t.TempDir()
	svg := `<svg viewBox="0 0 960 540"><path d="m0 0 10 0"/></svg>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "terreo.svg"), []byte(svg), 0644))

	h := NewFloorHandler(models.DefaultFloors(), dir, newMockSnapshots(newMockQuerier()))

	tests := []struct {
		name       string
		floor      string
		wantStatus int
		errCode    string
	}{
		{name: "existing map", floor: "terreo", wantStatus: http.StatusOK},
		{name: "known floor without generated map", floor: "subsolo", wantStatus: http.StatusNotFound, errCode: "NOT_FOUND"},
		{name: "unknown floor", floor: "cobertura", wantStatus: http.StatusNotFound, errCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := doRequest(t, http.MethodGet, "/api/floors/"+tt.floor+"/map", h.HandleFloorMap, "floor", tt.floor)
			if tt.errCode != "" {
				assertAPIError(t, err, tt.wantStatus, tt.errCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
			assert.Equal(t, svg, rec.Body.String())
		})
	}
}

func TestFloorHandler_HandleFloorRooms(t *testing.T) {
	h := NewFloorHandler(models.DefaultFloors(), t.TempDir(), newMockSnapshots(newMockQuerier()))

	rec, err := doRequest(t, http.MethodGet, "/api/floors/terreo/rooms", h.HandleFloorRooms, "floor", "terreo")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"t01"`)
	assert.NotContains(t, rec.Body.String(), `"sb05"`)
	assert.Contains(t, rec.Body.String(), `"courses":2`)
}

func TestFloorHandler_NoSnapshot(t *testing.T) {
	h := NewFloorHandler(models.DefaultFloors(), t.TempDir(), newMockSnapshots(nil))

	_, err := doRequest(t, http.MethodGet, "/api/floors/terreo/rooms", h.HandleFloorRooms, "floor", "terreo")
	assertAPIError(t, err, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
}
