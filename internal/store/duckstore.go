// Package store keeps the allocation snapshot in a DuckDB file and answers
// the dashboard's filtered, sorted and paginated queries with SQL.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/campus-floormap/backend/internal/models"
)

// Querier is the query surface handlers depend on; satisfied by *Store and
// by the in-memory mock used in tests.
type Querier interface {
	QueryRows(ctx context.Context, q Query) ([]models.AllocationRow, int, error)
	ExportCSV(ctx context.Context, q Query, w io.Writer) error
	Rooms(ctx context.Context, prefix string) ([]models.RoomSummary, error)
	Room(ctx context.Context, name string) (models.Room, []models.AllocationRow, error)
	Lecturers(ctx context.Context) ([]string, error)
	Departments(ctx context.Context) ([]string, error)
	Len() int
}

// Query describes one allocations request.
type Query struct {
	Docente      string
	Departamento string
	Horario      string
	FloorPrefix  string
	Room         string
	Search       string // matches course name or code, case-insensitive
	MinStudents  int
	MaxStudents  int
	SortBy       string // one of sortColumns
	SortDir      string // "asc" or "desc"
	Page         int
	PageSize     int
}

// sortColumns whitelists sortable columns; anything else falls back to sala.
var sortColumns = map[string]string{
	"sala":         "sala",
	"codigo":       "codigo",
	"nome":         "nome",
	"turma":        "turma",
	"docente":      "docente",
	"departamento": "departamento",
	"horario":      "horario",
	"alunos":       "alunos",
	"capacidade":   "capacidade",
}

// csvHeader matches the column layout of the exported spreadsheet.
var csvHeader = []string{
	"sala_id", "sala_bloco", "sala_nome", "sala_capacidade", "sala_tipo", "sala_acessivel",
	"disciplina_id", "disciplina_codigo", "disciplina_nome", "disciplina_turma",
	"disciplina_docente", "disciplina_departamento", "disciplina_horario",
	"disciplina_alunos", "disciplina_pcd",
}

// Store is a DuckDB-backed allocation table for one snapshot.
type Store struct {
	db     *sql.DB
	dbPath string
	count  int
	log    *zap.Logger

	// Cache for totals per filter, avoids repeated COUNT queries.
	countCache   map[string]int
	countCacheMu sync.RWMutex

	// Limits concurrent queries so dashboard bursts cannot stack scans.
	querySem chan struct{}
}

// Open creates a fresh store file under tempDir for the given snapshot id.
func Open(tempDir, snapshotID string, threads int, memoryLimit string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if threads <= 0 {
		threads = 2
	}
	if memoryLimit == "" {
		memoryLimit = "512MB"
	}

	dbPath := filepath.Join(tempDir, fmt.Sprintf("snapshot_%s.duckdb", snapshotID))
	os.Remove(dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", memoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("creating DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	_, err = db.Exec(`
		CREATE TABLE allocations (
			id           INTEGER PRIMARY KEY,
			sala_id      INTEGER NOT NULL,
			bloco        VARCHAR NOT NULL,
			sala         VARCHAR NOT NULL,
			capacidade   INTEGER NOT NULL,
			tipo         VARCHAR,
			acessivel    BOOLEAN NOT NULL,
			curso_id     INTEGER NOT NULL,
			codigo       VARCHAR NOT NULL,
			nome         VARCHAR NOT NULL,
			turma        VARCHAR,
			docente      VARCHAR,
			departamento VARCHAR,
			horario      VARCHAR,
			alunos       INTEGER NOT NULL,
			pcd          INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		os.Remove(dbPath)
		return nil, fmt.Errorf("creating allocations table: %w", err)
	}

	return &Store{
		db:         db,
		dbPath:     dbPath,
		log:        log,
		countCache: make(map[string]int),
		querySem:   make(chan struct{}, 3),
	}, nil
}

// Load bulk-inserts a snapshot's allocations through the Appender API and
// creates the filter indexes.
func (s *Store) Load(allocations []models.Allocation) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("getting connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn any) error {
		dConn, ok := driverConn.(driver.Conn)
		if !ok {
			return fmt.Errorf("unexpected driver connection type")
		}
		appender, err := duckdb.NewAppenderFromConn(dConn, "", "allocations")
		if err != nil {
			return fmt.Errorf("creating appender: %w", err)
		}
		defer appender.Close()

		for i, a := range allocations {
			r := a.Row()
			err := appender.AppendRow(
				int32(i),
				int32(r.RoomID), r.Bloco, r.Sala, int32(r.Capacidade), r.Tipo, r.Acessivel,
				int32(r.CourseID), r.Codigo, r.Nome, r.Turma, r.Docente, r.Departamento,
				r.Horario, int32(r.Alunos), int32(r.PCD),
			)
			if err != nil {
				return fmt.Errorf("appending row %d: %w", i, err)
			}
		}
		return appender.Flush()
	})
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		"CREATE INDEX idx_sala ON allocations(sala)",
		"CREATE INDEX idx_docente ON allocations(docente)",
		"CREATE INDEX idx_departamento ON allocations(departamento)",
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			s.log.Warn("index creation failed", zap.String("stmt", stmt), zap.Error(err))
		}
	}

	s.count = len(allocations)
	s.log.Info("allocation store loaded", zap.Int("rows", s.count), zap.String("path", s.dbPath))
	return nil
}

// Len returns the number of loaded allocation rows.
func (s *Store) Len() int { return s.count }

// buildWhere translates a Query into a WHERE clause and its arguments.
func buildWhere(q Query) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, vals ...any) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}

	if q.Docente != "" {
		add("docente = ?", q.Docente)
	}
	if q.Departamento != "" {
		add("departamento = ?", q.Departamento)
	}
	if q.Horario != "" {
		add("horario = ?", q.Horario)
	}
	if q.FloorPrefix != "" {
		add("LOWER(sala) LIKE ?", strings.ToLower(q.FloorPrefix)+"%")
	}
	if q.Room != "" {
		add("LOWER(sala) = ?", strings.ToLower(q.Room))
	}
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		add("(LOWER(nome) LIKE ? OR LOWER(codigo) LIKE ?)", like, like)
	}
	if q.MinStudents > 0 {
		add("alunos >= ?", q.MinStudents)
	}
	if q.MaxStudents > 0 {
		add("alunos <= ?", q.MaxStudents)
	}

	return strings.Join(conds, " AND "), args
}

func orderBy(q Query) string {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		col = "sala"
	}
	dir := "ASC"
	if strings.EqualFold(q.SortDir, "desc") {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, id ASC", col, dir)
}

// QueryRows returns one page of filtered rows plus the filtered total.
func (s *Store) QueryRows(ctx context.Context, q Query) ([]models.AllocationRow, int, error) {
	select {
	case s.querySem <- struct{}{}:
		defer func() { <-s.querySem }()
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}

	where, args := buildWhere(q)

	total, err := s.countWhere(ctx, where, args)
	if err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 100
	}

	query := "SELECT sala_id, bloco, sala, capacidade, tipo, acessivel, curso_id, codigo, nome, turma, docente, departamento, horario, alunos, pcd FROM allocations"
	if where != "" {
		query += " WHERE " + where
	}
	query += " " + orderBy(q)
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", q.PageSize, (q.Page-1)*q.PageSize)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying allocations: %w", err)
	}
	defer rows.Close()

	var out []models.AllocationRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

func (s *Store) countWhere(ctx context.Context, where string, args []any) (int, error) {
	cacheKey := where + "|" + fmt.Sprint(args...)

	s.countCacheMu.RLock()
	total, found := s.countCache[cacheKey]
	s.countCacheMu.RUnlock()
	if found {
		return total, nil
	}

	query := "SELECT COUNT(*) FROM allocations"
	if where != "" {
		query += " WHERE " + where
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("counting allocations: %w", err)
	}

	s.countCacheMu.Lock()
	s.countCache[cacheKey] = total
	s.countCacheMu.Unlock()
	return total, nil
}

// ExportCSV streams every row matching the filters (ignoring pagination)
// in the spreadsheet column layout.
func (s *Store) ExportCSV(ctx context.Context, q Query, w io.Writer) error {
	where, args := buildWhere(q)

	query := "SELECT sala_id, bloco, sala, capacidade, tipo, acessivel, curso_id, codigo, nome, turma, docente, departamento, horario, alunos, pcd FROM allocations"
	if where != "" {
		query += " WHERE " + where
	}
	query += " " + orderBy(q)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("querying allocations for export: %w", err)
	}
	defer rows.Close()

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return err
		}
		record := []string{
			strconv.Itoa(r.RoomID), r.Bloco, r.Sala, strconv.Itoa(r.Capacidade), r.Tipo,
			strconv.FormatBool(r.Acessivel),
			strconv.Itoa(r.CourseID), r.Codigo, r.Nome, r.Turma, r.Docente, r.Departamento,
			r.Horario, strconv.Itoa(r.Alunos), strconv.Itoa(r.PCD),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return rows.Err()
}

// Rooms aggregates rooms whose name starts with prefix, with course counts.
// An empty prefix returns every room.
func (s *Store) Rooms(ctx context.Context, prefix string) ([]models.RoomSummary, error) {
	query := `SELECT sala_id, bloco, sala, capacidade, tipo, acessivel, COUNT(*)
		FROM allocations`
	var args []any
	if prefix != "" {
		query += " WHERE LOWER(sala) LIKE ?"
		args = append(args, strings.ToLower(prefix)+"%")
	}
	query += " GROUP BY sala_id, bloco, sala, capacidade, tipo, acessivel ORDER BY sala"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying rooms: %w", err)
	}
	defer rows.Close()

	var out []models.RoomSummary
	for rows.Next() {
		var r models.RoomSummary
		if err := rows.Scan(&r.ID, &r.Bloco, &r.Nome, &r.Capacidade, &r.Tipo, &r.Acessivel, &r.Courses); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Room returns one room (matched case-insensitively by name) and its rows.
func (s *Store) Room(ctx context.Context, name string) (models.Room, []models.AllocationRow, error) {
	rows, _, err := s.QueryRows(ctx, Query{Room: name, PageSize: 1000, SortBy: "horario"})
	if err != nil {
		return models.Room{}, nil, err
	}
	if len(rows) == 0 {
		return models.Room{}, nil, fmt.Errorf("room not found: %s", name)
	}
	first := rows[0]
	room := models.Room{
		ID:         first.RoomID,
		Bloco:      first.Bloco,
		Nome:       first.Sala,
		Capacidade: first.Capacidade,
		Tipo:       first.Tipo,
		Acessivel:  first.Acessivel,
	}
	return room, rows, nil
}

// Lecturers returns the distinct docente values, sorted.
func (s *Store) Lecturers(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "docente")
}

// Departments returns the distinct departamento values, sorted.
func (s *Store) Departments(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "departamento")
}

func (s *Store) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT DISTINCT %s FROM allocations WHERE %s <> '' ORDER BY %s", column, column, column))
	if err != nil {
		return nil, fmt.Errorf("querying distinct %s: %w", column, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Close shuts the database and removes the snapshot file.
func (s *Store) Close() error {
	err := s.db.Close()
	if rmErr := os.Remove(s.dbPath); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
		err = rmErr
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(rs rowScanner) (models.AllocationRow, error) {
	var r models.AllocationRow
	err := rs.Scan(
		&r.RoomID, &r.Bloco, &r.Sala, &r.Capacidade, &r.Tipo, &r.Acessivel,
		&r.CourseID, &r.Codigo, &r.Nome, &r.Turma, &r.Docente, &r.Departamento,
		&r.Horario, &r.Alunos, &r.PCD,
	)
	if err != nil {
		return models.AllocationRow{}, fmt.Errorf("scanning allocation row: %w", err)
	}
	return r, nil
}
