package svg

import (
	"strconv"
	"strings"
)

// Bounds is the bounding box of an SVG path.
type Bounds struct {
	MinX, MaxX, MinY, MaxY float64
}

func (b Bounds) CenterX() float64 { return (b.MinX + b.MaxX) / 2 }
func (b Bounds) CenterY() float64 { return (b.MinY + b.MaxY) / 2 }
func (b Bounds) Width() float64   { return b.MaxX - b.MinX }
func (b Bounds) Height() float64  { return b.MaxY - b.MinY }

// ParsePathBounds computes the bounding box of a path "d" attribute.
// Command letters are stripped and the remaining numbers are read as
// relative (dx, dy) pairs accumulated from the origin, which matches how
// the floor drawings are exported. Non-numeric tokens are skipped and an
// odd trailing coordinate is dropped. ok is false when no coordinate pair
// could be read at all.
func ParsePathBounds(d string) (b Bounds, ok bool) {
	cleaned := make([]rune, 0, len(d))
	for _, r := range d {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ',' {
			cleaned = append(cleaned, ' ')
		} else {
			cleaned = append(cleaned, r)
		}
	}

	var coords []float64
	for _, tok := range strings.Fields(string(cleaned)) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		coords = append(coords, v)
	}

	if len(coords)%2 != 0 {
		coords = coords[:len(coords)-1]
	}
	if len(coords) == 0 {
		return Bounds{}, false
	}

	var x, y float64
	b = Bounds{MinX: coords[0], MaxX: coords[0], MinY: coords[1], MaxY: coords[1]}
	first := true
	for i := 0; i+1 < len(coords); i += 2 {
		x += coords[i]
		y += coords[i+1]
		if first {
			b = Bounds{MinX: x, MaxX: x, MinY: y, MaxY: y}
			first = false
			continue
		}
		if x < b.MinX {
			b.MinX = x
		}
		if x > b.MaxX {
			b.MaxX = x
		}
		if y < b.MinY {
			b.MinY = y
		}
		if y > b.MaxY {
			b.MaxY = y
		}
	}
	return b, true
}
