// Package schedule parses the compact schedule codes used by the campus
// timetabling feed. A code like "2M2345" reads: weekdays first (2 = Monday),
// then one shift letter (M = morning), then the class-hour slots within the
// shift (hours 2 through 5).
package schedule

import "time"

// Shift letters and their starting clock hour.
const (
	ShiftMorning   = "M" // 06:00
	ShiftAfternoon = "T" // 12:00
	ShiftNight     = "N" // 18:00
	ShiftSpecial   = "E" // 00:00
)

var shiftStart = map[string]int{
	ShiftMorning:   6,
	ShiftAfternoon: 12,
	ShiftNight:     18,
	ShiftSpecial:   0,
}

// DayNames maps feed weekday numbers (1 = Sunday .. 7 = Saturday) to their
// Portuguese names, matching what the dashboard displays.
var DayNames = map[int]string{
	1: "Domingo",
	2: "Segunda-feira",
	3: "Terça-feira",
	4: "Quarta-feira",
	5: "Quinta-feira",
	6: "Sexta-feira",
	7: "Sábado",
}

// ShiftNames maps shift letters to display names.
var ShiftNames = map[string]string{
	ShiftMorning:   "Manhã",
	ShiftAfternoon: "Tarde",
	ShiftNight:     "Noite",
	ShiftSpecial:   "Especial",
}

// Code is a parsed schedule code.
type Code struct {
	Days  []int  // feed weekday numbers, 1-7
	Shift string // one of M, T, N, E; empty if the code had no letter
	Hours []int  // class-hour slots within the shift, 1-6
}

// Parse scans a schedule code. Digits before the first letter are weekdays,
// the letter is the shift, digits after it are class hours. Anything
// malformed simply yields a partial (possibly empty) code; the feed contains
// the occasional garbage value and a bad code must never fail a request.
func Parse(s string) Code {
	var c Code
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			n := int(r - '0')
			if c.Shift == "" {
				c.Days = append(c.Days, n)
			} else {
				c.Hours = append(c.Hours, n)
			}
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			if c.Shift == "" {
				c.Shift = string(r)
				if r >= 'a' && r <= 'z' {
					c.Shift = string(r - 32)
				}
			}
		}
	}
	return c
}

// OccursOn reports whether the code includes the given feed weekday (1-7).
func (c Code) OccursOn(day int) bool {
	for _, d := range c.Days {
		if d == day {
			return true
		}
	}
	return false
}

// ClockHours returns the starting clock hours of each slot, formatted
// "HH:00". Unknown shifts yield nil.
func (c Code) ClockHours() []string {
	start, ok := shiftStart[c.Shift]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(c.Hours))
	for _, h := range c.Hours {
		hour := (start + h) % 24
		out = append(out, twoDigits(hour)+":00")
	}
	return out
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// Weekday converts a Go weekday to the feed numbering (Sunday = 1).
func Weekday(t time.Time) int {
	return int(t.Weekday()) + 1
}
