// handlers_test.go - Shared mocks and helpers for handler tests
package api

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campus-floormap/backend/internal/models"
	"github.com/campus-floormap/backend/internal/store"
	"github.com/campus-floormap/backend/internal/testutil"
)

// mockQuerier answers store.Querier from an in-memory slice.
type mockQuerier struct {
	rows []models.AllocationRow
	err  error
}

func newMockQuerier() *mockQuerier {
	var rows []models.AllocationRow
	for _, a := range testutil.FixtureAllocations() {
		rows = append(rows, a.Row())
	}
	return &mockQuerier{rows: rows}
}

func (m *mockQuerier) filtered(q store.Query) []models.AllocationRow {
	var out []models.AllocationRow
	for _, r := range m.rows {
		if q.Docente != "" && r.Docente != q.Docente {
			continue
		}
		if q.Departamento != "" && r.Departamento != q.Departamento {
			continue
		}
		if q.FloorPrefix != "" && !strings.HasPrefix(strings.ToLower(r.Sala), strings.ToLower(q.FloorPrefix)) {
			continue
		}
		if q.Room != "" && !strings.EqualFold(r.Sala, q.Room) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(r.Nome), strings.ToLower(q.Search)) {
			continue
		}
		if q.MinStudents > 0 && r.Alunos < q.MinStudents {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (m *mockQuerier) QueryRows(ctx context.Context, q store.Query) ([]models.AllocationRow, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	rows := m.filtered(q)
	return rows, len(rows), nil
}

func (m *mockQuerier) ExportCSV(ctx context.Context, q store.Query, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	cw := csv.NewWriter(w)
	cw.Write([]string{"sala_nome", "disciplina_nome"})
	for _, r := range m.filtered(q) {
		cw.Write([]string{r.Sala, r.Nome})
	}
	cw.Flush()
	return cw.Error()
}

func (m *mockQuerier) Rooms(ctx context.Context, prefix string) ([]models.RoomSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	byName := make(map[string]*models.RoomSummary)
	for _, r := range m.filtered(store.Query{FloorPrefix: prefix}) {
		if s, ok := byName[r.Sala]; ok {
			s.Courses++
			continue
		}
		byName[r.Sala] = &models.RoomSummary{
			Room: models.Room{
				ID: r.RoomID, Bloco: r.Bloco, Nome: r.Sala,
				Capacidade: r.Capacidade, Tipo: r.Tipo, Acessivel: r.Acessivel,
			},
			Courses: 1,
		}
	}
	var out []models.RoomSummary
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (m *mockQuerier) Room(ctx context.Context, name string) (models.Room, []models.AllocationRow, error) {
	rows := m.filtered(store.Query{Room: name})
	if len(rows) == 0 {
		return models.Room{}, nil, fmt.Errorf("room not found: %s", name)
	}
	first := rows[0]
	return models.Room{
		ID: first.RoomID, Bloco: first.Bloco, Nome: first.Sala,
		Capacidade: first.Capacidade, Tipo: first.Tipo, Acessivel: first.Acessivel,
	}, rows, nil
}

func (m *mockQuerier) Lecturers(ctx context.Context) ([]string, error) {
	return m.distinct(func(r models.AllocationRow) string { return r.Docente }), nil
}

func (m *mockQuerier) Departments(ctx context.Context) ([]string, error) {
	return m.distinct(func(r models.AllocationRow) string { return r.Departamento }), nil
}

func (m *mockQuerier) distinct(key func(models.AllocationRow) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range m.rows {
		k := key(r)
		if _, ok := seen[k]; ok || k == "" {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m *mockQuerier) Len() int { return len(m.rows) }

// mockSnapshots implements SnapshotProvider for handler tests.
type mockSnapshots struct {
	state    *CurrentState
	snaps    map[string]models.Snapshot
	refreshN int
}

func newMockSnapshots(q store.Querier) *mockSnapshots {
	m := &mockSnapshots{snaps: make(map[string]models.Snapshot)}
	if q != nil {
		snap := models.Snapshot{
			ID:     "snap-current",
			Status: models.SnapshotStatusReady,
			Source: "api",
			Center: testutil.FixtureCenter(),
		}
		m.snaps[snap.ID] = snap
		m.state = &CurrentState{Snapshot: snap, Center: testutil.FixtureCenter(), Store: q}
	}
	return m
}

func (m *mockSnapshots) Refresh() *models.Snapshot {
	m.refreshN++
	snap := models.Snapshot{
		ID:     fmt.Sprintf("snap-%d", m.refreshN),
		Status: models.SnapshotStatusPending,
		Source: "api",
	}
	m.snaps[snap.ID] = snap
	return &snap
}

func (m *mockSnapshots) Get(id string) (models.Snapshot, bool) {
	snap, ok := m.snaps[id]
	return snap, ok
}

func (m *mockSnapshots) CurrentState() (CurrentState, bool) {
	if m.state == nil {
		return CurrentState{}, false
	}
	return *m.state, true
}

// doRequest runs one request through a bare Echo context.
func doRequest(t *testing.T, method, target string, handler echo.HandlerFunc, params ...string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	if len(names) > 0 {
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	return rec, handler(c)
}

func assertAPIError(t *testing.T, err error, wantStatus int, wantCode string) {
	t.Helper()
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Status != wantStatus {
		t.Errorf("status = %d, want %d", apiErr.Status, wantStatus)
	}
	if apiErr.Code != wantCode {
		t.Errorf("code = %q, want %q", apiErr.Code, wantCode)
	}
}
