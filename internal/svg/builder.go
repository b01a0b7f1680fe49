// Package svg renders interactive floor-plan SVG documents from the
// per-floor room definition files. The generator is a one-shot process:
// it reads <floors>/<key>.json and writes <out>/<key>.svg for each floor.
package svg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/campus-floormap/backend/internal/models"
)

// Options controls document geometry and typography.
type Options struct {
	ViewBoxWidth      float64
	ViewBoxHeight     float64
	IconDim           int     // base icon dimension before scaling
	IconScale         float64 // scale applied when placing icons
	TitleFontSize     float64
	DescFontSize      float64
	DefaultHoverColor string
}

// DefaultOptions matches the geometry of the source drawings.
func DefaultOptions() Options {
	return Options{
		ViewBoxWidth:      960,
		ViewBoxHeight:     540,
		IconDim:           200,
		IconScale:         0.25,
		TitleFontSize:     16,
		DescFontSize:      12,
		DefaultHoverColor: "#B2BCBE",
	}
}

// Generator renders floor SVGs from definition files.
type Generator struct {
	floorsDir string
	outDir    string
	opts      Options
	log       *zap.Logger
}

// NewGenerator creates a generator reading floor JSON from floorsDir and
// writing SVG documents to outDir.
func NewGenerator(floorsDir, outDir string, opts Options, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{floorsDir: floorsDir, outDir: outDir, opts: opts, log: log}
}

// GenerateAll renders every floor concurrently. A floor whose definition
// file is missing or malformed fails only that floor: the error is logged
// and the remaining floors still render. GenerateAll returns an error only
// when the run is cancelled or no floor rendered at all.
func (g *Generator) GenerateAll(ctx context.Context, floors []models.Floor) error {
	if err := os.MkdirAll(g.outDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var eg errgroup.Group
	var rendered atomic.Int32
	for _, floor := range floors {
		floor := floor
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path, err := g.GenerateFloor(floor)
			if err != nil {
				g.log.Warn("floor skipped", zap.String("floor", floor.Key), zap.Error(err))
				return nil
			}
			rendered.Add(1)
			g.log.Info("floor rendered", zap.String("floor", floor.Key), zap.String("path", path))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if len(floors) > 0 && rendered.Load() == 0 {
		return fmt.Errorf("no floor could be rendered from %s", g.floorsDir)
	}
	return nil
}

// GenerateFloor renders a single floor and returns the output path.
func (g *Generator) GenerateFloor(floor models.Floor) (string, error) {
	srcPath := filepath.Join(g.floorsDir, floor.Key+".json")
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return "", fmt.Errorf("reading floor definition: %w", err)
	}

	var shapes []models.RoomShape
	if err := json.Unmarshal(data, &shapes); err != nil {
		return "", fmt.Errorf("decoding floor definition: %w", err)
	}

	doc := g.BuildFloorDocument(shapes)

	if err := os.MkdirAll(g.outDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	outPath := filepath.Join(g.outDir, floor.Key+".svg")
	if err := os.WriteFile(outPath, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("writing floor SVG: %w", err)
	}
	return outPath, nil
}

// BuildFloorDocument composes the full SVG document for a set of shapes.
func (g *Generator) BuildFloorDocument(shapes []models.RoomShape) string {
	var elements, styles []string
	for _, s := range shapes {
		el, ok := g.roomElement(s)
		if !ok {
			g.log.Warn("skipping shape without usable path data", zap.String("id", s.ElementID()))
			continue
		}
		elements = append(elements,
			fmt.Sprintf(`<a id="%s" href="#">%s</a>`, s.ElementID(), el))
		if st := hoverStyle(s, g.opts.DefaultHoverColor); st != "" {
			styles = append(styles, st)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg version="1.1" viewBox="0 0 %s %s" fill="none" stroke="none" stroke-linecap="square" stroke-miterlimit="10" xmlns:xlink="http://www.w3.org/1999/xlink" xmlns="http://www.w3.org/2000/svg">`,
		trimFloat(g.opts.ViewBoxWidth), trimFloat(g.opts.ViewBoxHeight))
	sb.WriteString("\n<style>\n")
	sb.WriteString(strings.Join(styles, "\n"))
	sb.WriteString("\n</style>\n<defs />\n")
	fmt.Fprintf(&sb, `<clipPath id="floor-clip"><path d="m0 0l%s 0l0 %sl-%s 0l0 -%sz" clip-rule="nonzero" /></clipPath>`,
		trimFloat(g.opts.ViewBoxWidth), trimFloat(g.opts.ViewBoxHeight),
		trimFloat(g.opts.ViewBoxWidth), trimFloat(g.opts.ViewBoxHeight))
	sb.WriteString("\n<g clip-path=\"url(#floor-clip)\">\n")
	sb.WriteString(strings.Join(elements, "\n"))
	sb.WriteString("\n</g>\n</svg>\n")
	return sb.String()
}

// roomElement renders the path plus, for typed rooms, its icon and labels.
func (g *Generator) roomElement(s models.RoomShape) (string, bool) {
	if s.PathData == "" {
		return "", false
	}

	if s.Type == "" {
		return plainPath(s), true
	}

	bounds, ok := ParsePathBounds(s.PathData)
	if !ok {
		return "", false
	}

	cx, cy := bounds.CenterX(), bounds.CenterY()
	width := bounds.Width()
	textDistance := bounds.Height() * 0.15

	var sb strings.Builder
	sb.WriteString(pathElement(s, [][2]string{
		{"fill", s.Fill},
		{"d", s.PathData},
		{"fill-rule", s.FillRule},
		{"id", s.ElementID()},
		{"class", s.Type},
	}))

	icon, err := LoadIcon(s.Type, g.opts.IconDim, g.opts.IconDim)
	if err != nil {
		g.log.Warn("icon unavailable", zap.String("type", s.Type), zap.Error(err))
	} else {
		dim := float64(g.opts.IconDim)
		fmt.Fprintf(&sb, `<g transform="%s">%s</g>`,
			IconTransform(cx, cy, dim, dim, g.opts.IconScale), icon)
	}

	if s.Title != "" {
		size := FitFontSize(g.opts.TitleFontSize, s.Title, width)
		sb.WriteString(TextElement(strings.ToUpper(s.Title), cx, cy-textDistance-15, size, "bold"))
	}
	if s.Description != "" {
		size := FitFontSize(g.opts.DescFontSize, s.Description, width)
		sb.WriteString(TextElement(strings.ToUpper(s.Description), cx, cy+textDistance+15, size, ""))
	}

	return sb.String(), true
}

// plainPath renders an untyped shape (walls, corridors) as a bare path.
func plainPath(s models.RoomShape) string {
	return pathElement(s, [][2]string{
		{"fill", s.Fill},
		{"d", s.PathData},
		{"fill-rule", s.FillRule},
		{"id", s.ID},
		{"stroke", s.Stroke},
		{"stroke-width", s.StrokeWidth},
		{"stroke-linecap", s.StrokeLinecap},
		{"stroke-linejoin", s.StrokeLinejoin},
	})
}

func pathElement(s models.RoomShape, attrs [][2]string) string {
	var sb strings.Builder
	sb.WriteString("<path")
	for _, kv := range attrs {
		if kv[1] != "" {
			fmt.Fprintf(&sb, ` %s="%s"`, kv[0], kv[1])
		}
	}
	sb.WriteString(" />")
	return sb.String()
}

// hoverStyle emits the CSS block that highlights a room on hover.
func hoverStyle(s models.RoomShape, defaultColor string) string {
	id := s.ElementID()
	if id == "" {
		return ""
	}
	color := s.ColorOnHover
	if color == "" {
		color = defaultColor
	}
	return fmt.Sprintf(`#%[1]s { transition: fill 0.3s ease; }
a:hover #%[1]s { fill: %[2]s; stroke: black; stroke-width: 5px; transition: fill 0.4s; }`, id, color)
}
