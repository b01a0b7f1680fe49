// Package campus fetches class allocations from the university
// timetabling API and flattens its nested document into allocation rows.
package campus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campus-floormap/backend/internal/models"
)

// Client talks to the campus timetabling endpoint
// (e.g. https://sa.ci.ufpb.br/api/db/public/paas?centro=ci).
type Client struct {
	baseURL string
	centro  string
	http    *http.Client
	log     *zap.Logger
}

// NewClient creates a campus API client. timeout bounds a whole fetch.
func NewClient(baseURL, centro string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		centro:  centro,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// Wire format of the timetabling document. The feed nests the room list
// under solution.solution and pads most strings with whitespace.
type document struct {
	ID          string `json:"id"`
	Centro      string `json:"centro"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Solution    struct {
		Solution []roomDocument `json:"solution"`
	} `json:"solution"`
}

type roomDocument struct {
	ID         int              `json:"id"`
	Bloco      string           `json:"bloco"`
	Nome       string           `json:"nome"`
	Capacidade int              `json:"capacidade"`
	Tipo       string           `json:"tipo"`
	Acessivel  bool             `json:"acessivel"`
	Classes    []courseDocument `json:"classes"`
}

type courseDocument struct {
	ID           int      `json:"id"`
	Codigo       string   `json:"codigo"`
	Nome         string   `json:"nome"`
	Turma        string   `json:"turma"`
	Docente      string   `json:"docente"`
	Departamento string   `json:"departamento"`
	Horario      string   `json:"horario"`
	Alunos       int      `json:"alunos"`
	PCD          int      `json:"pcd"`
	Preferencias []string `json:"preferencias"` // may be null
}

// FetchAllocations downloads the current timetabling document and flattens
// it into one allocation per (room, course) pair.
func (c *Client) FetchAllocations(ctx context.Context) (models.Center, []models.Allocation, error) {
	u := fmt.Sprintf("%s?centro=%s", c.baseURL, url.QueryEscape(c.centro))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.Center{}, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return models.Center{}, nil, fmt.Errorf("fetching allocations: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Center{}, nil, fmt.Errorf("campus API returned status %d", resp.StatusCode)
	}

	var doc document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return models.Center{}, nil, fmt.Errorf("decoding allocations: %w", err)
	}

	center := models.Center{
		ID:          strings.TrimSpace(doc.ID),
		Name:        strings.TrimSpace(doc.Centro),
		Date:        strings.TrimSpace(doc.Date),
		Description: strings.TrimSpace(doc.Description),
	}

	var allocations []models.Allocation
	for _, rd := range doc.Solution.Solution {
		room := models.Room{
			ID:         rd.ID,
			Bloco:      strings.TrimSpace(rd.Bloco),
			Nome:       strings.TrimSpace(rd.Nome),
			Capacidade: rd.Capacidade,
			Tipo:       strings.TrimSpace(rd.Tipo),
			Acessivel:  rd.Acessivel,
		}
		for _, cd := range rd.Classes {
			prefs := cd.Preferencias
			if prefs == nil {
				prefs = []string{}
			}
			course := models.Course{
				ID:           cd.ID,
				Codigo:       strings.TrimSpace(cd.Codigo),
				Nome:         strings.TrimSpace(cd.Nome),
				Turma:        strings.TrimSpace(cd.Turma),
				Docente:      strings.TrimSpace(cd.Docente),
				Departamento: strings.TrimSpace(cd.Departamento),
				Horario:      strings.TrimSpace(cd.Horario),
				Alunos:       cd.Alunos,
				PCD:          cd.PCD,
				Preferencias: prefs,
			}
			allocations = append(allocations, models.Allocation{Center: center, Room: room, Course: course})
		}
	}

	c.log.Info("allocations fetched",
		zap.Int("rooms", len(doc.Solution.Solution)),
		zap.Int("allocations", len(allocations)),
		zap.Duration("took", time.Since(start)))

	return center, allocations, nil
}
