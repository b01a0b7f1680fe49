// handlers_allocations_test.go - Tests for allocation query handlers
package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestAllocationHandler_HandleQueryAllocations(t *testing.T) {
	h := NewAllocationHandler(newMockSnapshots(newMockQuerier()), nil)

	tests := []struct {
		name      string
		target    string
		wantTotal int
	}{
		{name: "unfiltered", target: "/api/allocations", wantTotal: 3},
		{name: "by docente", target: "/api/allocations?docente=ANA+LIMA", wantTotal: 1},
		{name: "by floor", target: "/api/allocations?floor=t", wantTotal: 2},
		{name: "by search", target: "/api/allocations?q=redes", wantTotal: 1},
		{name: "no match", target: "/api/allocations?docente=ninguem", wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := doRequest(t, http.MethodGet, tt.target, h.HandleQueryAllocations)
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, rec.Code)

			var body allocationsResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantTotal, body.Total)
			assert.Len(t, body.Allocations, tt.wantTotal)
		})
	}
}

func TestAllocationHandler_HandleQueryAllocations_NoSnapshot(t *testing.T) {
	h := NewAllocationHandler(newMockSnapshots(nil), nil)

	_, err := doRequest(t, http.MethodGet, "/api/allocations", h.HandleQueryAllocations)
	assertAPIError(t, err, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
}

func TestAllocationHandler_HandleAllocationsMsgpack(t *testing.T) {
	h := NewAllocationHandler(newMockSnapshots(newMockQuerier()), nil)

	rec, err := doRequest(t, http.MethodGet, "/api/allocations/msgpack", h.HandleAllocationsMsgpack)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 3, body["total"])
}

func TestAllocationHandler_HandleExportCSV(t *testing.T) {
	h := NewAllocationHandler(newMockSnapshots(newMockQuerier()), nil)

	rec, err := doRequest(t, http.MethodGet, "/api/allocations/export?floor=sb", h.HandleExportCSV)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "alocacoes.csv")
	assert.Contains(t, rec.Body.String(), "Redes de Computadores")
	assert.NotContains(t, rec.Body.String(), "Estruturas de Dados")
}

func TestAllocationHandler_Lookups(t *testing.T) {
	h := NewAllocationHandler(newMockSnapshots(newMockQuerier()), nil)

	rec, err := doRequest(t, http.MethodGet, "/api/allocations/docentes", h.HandleLecturers)
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "MARIA SILVA")
	assert.Contains(t, rec.Body.String(), "JOAO SOUZA")

	rec, err = doRequest(t, http.MethodGet, "/api/allocations/departamentos", h.HandleDepartments)
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "CI-DCC")
	assert.Contains(t, rec.Body.String(), "CI-DSC")
}
