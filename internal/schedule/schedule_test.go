package schedule

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantDays  []int
		wantShift string
		wantHours []int
	}{
		{"monday morning", "2M2345", []int{2}, "M", []int{2, 3, 4, 5}},
		{"two days afternoon", "35T45", []int{3, 5}, "T", []int{4, 5}},
		{"night single slot", "6N1", []int{6}, "N", []int{1}},
		{"special shift", "7E12", []int{7}, "E", []int{1, 2}},
		{"lowercase shift", "2m23", []int{2}, "M", []int{2, 3}},
		{"no shift letter", "246", []int{2, 4, 6}, "", nil},
		{"empty", "", nil, "", nil},
		{"garbage mixed in", "2M-23", []int{2}, "M", []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.code)
			if got.Shift != tt.wantShift {
				t.Errorf("Shift = %q, want %q", got.Shift, tt.wantShift)
			}
			if !equalInts(got.Days, tt.wantDays) {
				t.Errorf("Days = %v, want %v", got.Days, tt.wantDays)
			}
			if !equalInts(got.Hours, tt.wantHours) {
				t.Errorf("Hours = %v, want %v", got.Hours, tt.wantHours)
			}
		})
	}
}

func TestClockHours(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{"2M2345", []string{"08:00", "09:00", "10:00", "11:00"}},
		{"3T12", []string{"13:00", "14:00"}},
		{"4N3", []string{"21:00"}},
		{"5E1", []string{"01:00"}},
		{"246", nil}, // no shift, no hours
	}

	for _, tt := range tests {
		got := Parse(tt.code).ClockHours()
		if len(got) != len(tt.want) {
			t.Errorf("Parse(%q).ClockHours() = %v, want %v", tt.code, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Parse(%q).ClockHours()[%d] = %q, want %q", tt.code, i, got[i], tt.want[i])
			}
		}
	}
}

func TestOccursOn(t *testing.T) {
	c := Parse("35T45")
	if !c.OccursOn(3) || !c.OccursOn(5) {
		t.Errorf("expected code to occur on days 3 and 5")
	}
	if c.OccursOn(2) {
		t.Errorf("code should not occur on day 2")
	}
}

func TestWeekday(t *testing.T) {
	// 2026-08-30 is a Sunday.
	sunday := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	if got := Weekday(sunday); got != 1 {
		t.Errorf("Weekday(sunday) = %d, want 1", got)
	}
	monday := sunday.AddDate(0, 0, 1)
	if got := Weekday(monday); got != 2 {
		t.Errorf("Weekday(monday) = %d, want 2", got)
	}
	saturday := sunday.AddDate(0, 0, 6)
	if got := Weekday(saturday); got != 7 {
		t.Errorf("Weekday(saturday) = %d, want 7", got)
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
