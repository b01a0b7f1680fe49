package svg

import "testing"

func TestParsePathBounds(t *testing.T) {
	tests := []struct {
		name    string
		d       string
		want    Bounds
		wantOK  bool
	}{
		{
			name:   "simple relative rectangle",
			d:      "m10 20l50 0l0 30l-50 0z",
			want:   Bounds{MinX: 10, MaxX: 60, MinY: 20, MaxY: 50},
			wantOK: true,
		},
		{
			name:   "negative deltas",
			d:      "m100 100l-40 -10",
			want:   Bounds{MinX: 60, MaxX: 100, MinY: 90, MaxY: 100},
			wantOK: true,
		},
		{
			name:   "odd trailing coordinate dropped",
			d:      "m10 10l5 5l7",
			want:   Bounds{MinX: 10, MaxX: 15, MinY: 10, MaxY: 15},
			wantOK: true,
		},
		{
			name:   "empty path",
			d:      "",
			wantOK: false,
		},
		{
			name:   "letters only",
			d:      "mzl",
			wantOK: false,
		},
		{
			name:   "comma separated",
			d:      "m10,20 l30,0",
			want:   Bounds{MinX: 10, MaxX: 40, MinY: 20, MaxY: 20},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePathBounds(tt.d)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got != tt.want {
				t.Errorf("bounds = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBoundsCenter(t *testing.T) {
	b := Bounds{MinX: 10, MaxX: 30, MinY: 0, MaxY: 40}
	if b.CenterX() != 20 {
		t.Errorf("CenterX = %v, want 20", b.CenterX())
	}
	if b.CenterY() != 20 {
		t.Errorf("CenterY = %v, want 20", b.CenterY())
	}
	if b.Width() != 20 || b.Height() != 40 {
		t.Errorf("Width/Height = %v/%v, want 20/40", b.Width(), b.Height())
	}
}

func TestFitFontSize(t *testing.T) {
	// Short text keeps the base size.
	if got := FitFontSize(16, "LAB", 200); got != 16 {
		t.Errorf("FitFontSize short = %v, want 16", got)
	}
	// Long text in a narrow room shrinks.
	got := FitFontSize(16, "LABORATORIO DE PESQUISA", 60)
	if got >= 16 {
		t.Errorf("FitFontSize long = %v, want < 16", got)
	}
	// The shrunken size should fit the estimate exactly.
	want := 60.0 / (float64(len("LABORATORIO DE PESQUISA")) * 0.8)
	if got != want {
		t.Errorf("FitFontSize long = %v, want %v", got, want)
	}
}
