package bookingconfig

import (
	"time"

	"github.com/Alijeyrad/jyotish_backend/pkg/util/calendar"
)

// Grid is the bookable time-of-day grid: two half-open hour ranges and a
// minute step.
type Grid struct {
	MorningStart   int
	MorningEnd     int
	AfternoonStart int
	AfternoonEnd   int
	Step           time.Duration
}

func (g Grid) stepMinutes() int {
	m := int(g.Step / time.Minute)
	if m <= 0 {
		return 15
	}
	return m
}

// Contains reports whether t (already in local time) sits on the grid.
func (g Grid) Contains(t time.Time) bool {
	if t.Second() != 0 || t.Nanosecond() != 0 {
		return false
	}
	if t.Minute()%g.stepMinutes() != 0 {
		return false
	}
	h := t.Hour()
	return (h >= g.MorningStart && h < g.MorningEnd) ||
		(h >= g.AfternoonStart && h < g.AfternoonEnd)
}

// Instants lists every grid point on day's local date.
func (g Grid) Instants(day time.Time, loc *time.Location) []time.Time {
	var out []time.Time
	step := g.stepMinutes()
	for _, r := range [][2]int{{g.MorningStart, g.MorningEnd}, {g.AfternoonStart, g.AfternoonEnd}} {
		for h := r[0]; h < r[1]; h++ {
			for m := 0; m < 60; m += step {
				t := calendar.At(day, loc, h, m)
				// skip wall-clock times that do not exist (DST gap)
				if t.Hour() != h {
					continue
				}
				out = append(out, t)
			}
		}
	}
	return out
}

// Window is the weekly period during which clients may book.
type Window struct {
	Day       time.Weekday
	StartHour int
	EndHour   int
}

// IsOpen reports whether t (in local time) falls inside the window.
func (w Window) IsOpen(t time.Time) bool {
	return t.Weekday() == w.Day && t.Hour() >= w.StartHour && t.Hour() < w.EndHour
}

// NextOpening returns t if the window is open, otherwise the next local
// instant at which it opens.
func (w Window) NextOpening(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	if w.IsOpen(t) {
		return t
	}
	for i := 0; i <= 7; i++ {
		open := calendar.At(t.AddDate(0, 0, i), loc, w.StartHour, 0)
		if open.Weekday() == w.Day && open.After(t) {
			return open
		}
	}
	return calendar.At(t.AddDate(0, 0, 7), loc, w.StartHour, 0)
}

// Rules is a consistent snapshot of every parsed setting.
type Rules struct {
	DisabledDays map[time.Weekday]struct{}
	Grid         Grid
	Window       Window
}

func (r Rules) IsDisabled(day time.Weekday) bool {
	_, ok := r.DisabledDays[day]
	return ok
}
