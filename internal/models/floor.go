package models

// Floor describes one level of the building.
type Floor struct {
	Key    string `json:"key" yaml:"key"`       // file stem, e.g. "primeiro_andar"
	Name   string `json:"name" yaml:"name"`     // display name, e.g. "Primeiro Andar"
	Prefix string `json:"prefix" yaml:"prefix"` // room name prefix, e.g. "1"
}

// DefaultFloors returns the five levels of the CI building, bottom to top.
// The prefix is matched against the start of room names ("sb05", "t01", "101").
func DefaultFloors() []Floor {
	return []Floor{
		{Key: "subsolo", Name: "Subsolo", Prefix: "sb"},
		{Key: "terreo", Name: "Térreo", Prefix: "t"},
		{Key: "primeiro_andar", Name: "Primeiro Andar", Prefix: "1"},
		{Key: "segundo_andar", Name: "Segundo Andar", Prefix: "2"},
		{Key: "terceiro_andar", Name: "Terceiro Andar", Prefix: "3"},
	}
}

// RoomShape is one drawable component of a floor definition JSON file.
// The attribute names mirror the SVG path attributes of the source drawings.
type RoomShape struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Type           string `json:"type"` // selects the icon; empty means plain path
	Fill           string `json:"fill"`
	FillRule       string `json:"fillRule"`
	Stroke         string `json:"stroke"`
	StrokeWidth    string `json:"strokeWidth"`
	StrokeLinecap  string `json:"strokeLinecap"`
	StrokeLinejoin string `json:"strokeLinejoin"`
	ColorOnHover   string `json:"colorOnHover"`
	PathData       string `json:"d"`
}

// ElementID returns the identifier used for the clickable <a> wrapper.
// Shapes without an explicit id fall back to their title.
func (s RoomShape) ElementID() string {
	if s.ID != "" {
		return s.ID
	}
	return s.Title
}
