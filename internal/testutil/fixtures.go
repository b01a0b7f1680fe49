// Package testutil provides shared fixtures for handler and client tests.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/campus-floormap/backend/internal/models"
)

// FeedDocument is a minimal timetabling document in the campus API wire
// format: padded strings, nested solution.solution, one null preferencias.
const FeedDocument = `{
  "id": " paas-2026-1 ",
  "centro": "ci ",
  "date": "2026-08-01",
  "description": " Alocação 2026.1 ",
  "solution": {
    "solution": [
      {
        "id": 1,
        "bloco": "CI",
        "nome": " t01 ",
        "capacidade": 40,
        "tipo": "sala de aula ",
        "acessivel": true,
        "classes": [
          {
            "id": 11,
            "codigo": " GDSC0045 ",
            "nome": "Calculo Diferencial e Integral I ",
            "turma": "1",
            "docente": " MARIA SILVA",
            "departamento": "CI-DCC",
            "horario": "2M2345 ",
            "alunos": 38,
            "pcd": 1,
            "preferencias": null
          },
          {
            "id": 12,
            "codigo": "GDSC0072",
            "nome": "Estruturas de Dados",
            "turma": "2",
            "docente": "JOAO SOUZA",
            "departamento": "CI-DCC",
            "horario": "35T45",
            "alunos": 25,
            "pcd": 0,
            "preferencias": ["quadro branco"]
          }
        ]
      },
      {
        "id": 2,
        "bloco": "CI",
        "nome": "sb05",
        "capacidade": 20,
        "tipo": "laboratorio",
        "acessivel": false,
        "classes": [
          {
            "id": 21,
            "codigo": "GDSC0101",
            "nome": "Redes de Computadores",
            "turma": "1",
            "docente": "ANA LIMA",
            "departamento": "CI-DSC",
            "horario": "6N12",
            "alunos": 18,
            "pcd": 0,
            "preferencias": []
          }
        ]
      }
    ]
  }
}`

// NewCampusServer starts a test server that serves FeedDocument.
func NewCampusServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(FeedDocument))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// FixtureCenter is the center described by FeedDocument, after trimming.
func FixtureCenter() models.Center {
	return models.Center{
		ID:          "paas-2026-1",
		Name:        "ci",
		Date:        "2026-08-01",
		Description: "Alocação 2026.1",
	}
}

// FixtureAllocations returns the flattened allocations of FeedDocument.
func FixtureAllocations() []models.Allocation {
	center := FixtureCenter()
	t01 := models.Room{ID: 1, Bloco: "CI", Nome: "t01", Capacidade: 40, Tipo: "sala de aula", Acessivel: true}
	sb05 := models.Room{ID: 2, Bloco: "CI", Nome: "sb05", Capacidade: 20, Tipo: "laboratorio"}
	return []models.Allocation{
		{Center: center, Room: t01, Course: models.Course{
			ID: 11, Codigo: "GDSC0045", Nome: "Calculo Diferencial e Integral I", Turma: "1",
			Docente: "MARIA SILVA", Departamento: "CI-DCC", Horario: "2M2345",
			Alunos: 38, PCD: 1, Preferencias: []string{},
		}},
		{Center: center, Room: t01, Course: models.Course{
			ID: 12, Codigo: "GDSC0072", Nome: "Estruturas de Dados", Turma: "2",
			Docente: "JOAO SOUZA", Departamento: "CI-DCC", Horario: "35T45",
			Alunos: 25, Preferencias: []string{"quadro branco"},
		}},
		{Center: center, Room: sb05, Course: models.Course{
			ID: 21, Codigo: "GDSC0101", Nome: "Redes de Computadores", Turma: "1",
			Docente: "ANA LIMA", Departamento: "CI-DSC", Horario: "6N12",
			Alunos: 18, Preferencias: []string{},
		}},
	}
}
