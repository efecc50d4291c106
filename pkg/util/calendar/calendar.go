// Package calendar holds the local-time arithmetic shared by booking rules.
// All results are computed with time.Date in the given location so they stay
// correct across DST transitions.
package calendar

import "time"

// StartOfDay returns local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayBounds returns [midnight, next midnight) of t's local day.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// WeekStart returns Sunday 00:00 of the week containing t.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// WeekBounds returns [Sunday 00:00, next Sunday 00:00).
func WeekBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := WeekStart(t, loc)
	return start, start.AddDate(0, 0, 7)
}

// At returns hour:minute on t's local day.
func At(t time.Time, loc *time.Location, hour, minute int) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, loc)
}

// ParseDate parses YYYY-MM-DD as local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, loc)
}
