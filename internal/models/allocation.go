package models

// Center is the academic center the timetabling document belongs to.
type Center struct {
	ID          string `json:"id" msgpack:"id"`
	Name        string `json:"centro" msgpack:"centro"`
	Date        string `json:"date" msgpack:"date"`
	Description string `json:"description" msgpack:"description"`
}

// Room is a physical room of the building as reported by the campus API.
type Room struct {
	ID         int    `json:"id" msgpack:"id"`
	Bloco      string `json:"bloco" msgpack:"bloco"`
	Nome       string `json:"nome" msgpack:"nome"`
	Capacidade int    `json:"capacidade" msgpack:"capacidade"`
	Tipo       string `json:"tipo" msgpack:"tipo"`
	Acessivel  bool   `json:"acessivel" msgpack:"acessivel"`
}

// Course is a class section scheduled into a room.
// Horario carries the compact schedule code, e.g. "2M2345" or "35T45".
type Course struct {
	ID           int      `json:"id" msgpack:"id"`
	Codigo       string   `json:"codigo" msgpack:"codigo"`
	Nome         string   `json:"nome" msgpack:"nome"`
	Turma        string   `json:"turma" msgpack:"turma"`
	Docente      string   `json:"docente" msgpack:"docente"`
	Departamento string   `json:"departamento" msgpack:"departamento"`
	Horario      string   `json:"horario" msgpack:"horario"`
	Alunos       int      `json:"alunos" msgpack:"alunos"`
	PCD          int      `json:"pcd" msgpack:"pcd"`
	Preferencias []string `json:"preferencias" msgpack:"preferencias"`
}

// Allocation binds a course to the room it was scheduled into.
type Allocation struct {
	Center Center `json:"centro" msgpack:"centro"`
	Room   Room   `json:"sala" msgpack:"sala"`
	Course Course `json:"disciplina" msgpack:"disciplina"`
}

// AllocationRow is the flattened form served by the query and export
// endpoints, one row per course occupancy.
type AllocationRow struct {
	RoomID       int    `json:"roomId"`
	Bloco        string `json:"bloco"`
	Sala         string `json:"sala"`
	Capacidade   int    `json:"capacidade"`
	Tipo         string `json:"tipo"`
	Acessivel    bool   `json:"acessivel"`
	CourseID     int    `json:"courseId"`
	Codigo       string `json:"codigo"`
	Nome         string `json:"nome"`
	Turma        string `json:"turma"`
	Docente      string `json:"docente"`
	Departamento string `json:"departamento"`
	Horario      string `json:"horario"`
	Alunos       int    `json:"alunos"`
	PCD          int    `json:"pcd"`
}

// Row flattens an allocation for the query store.
func (a Allocation) Row() AllocationRow {
	return AllocationRow{
		RoomID:       a.Room.ID,
		Bloco:        a.Room.Bloco,
		Sala:         a.Room.Nome,
		Capacidade:   a.Room.Capacidade,
		Tipo:         a.Room.Tipo,
		Acessivel:    a.Room.Acessivel,
		CourseID:     a.Course.ID,
		Codigo:       a.Course.Codigo,
		Nome:         a.Course.Nome,
		Turma:        a.Course.Turma,
		Docente:      a.Course.Docente,
		Departamento: a.Course.Departamento,
		Horario:      a.Course.Horario,
		Alunos:       a.Course.Alunos,
		PCD:          a.Course.PCD,
	}
}

// RoomSummary aggregates a room with the number of courses allocated to it.
type RoomSummary struct {
	Room
	Courses int `json:"courses"`
}
