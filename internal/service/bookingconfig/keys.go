package bookingconfig

const (
	KeyDisabledDays    = "disabled_days"
	KeyMorningStart    = "morning_slot_start"
	KeyMorningEnd      = "morning_slot_end"
	KeyAfternoonStart  = "afternoon_slot_start"
	KeyAfternoonEnd    = "afternoon_slot_end"
	KeyWindowDay       = "booking_window_day"
	KeyWindowStartHour = "booking_window_start_hour"
	KeyWindowEndHour   = "booking_window_end_hour"
)

type valueKind int

const (
	kindHour valueKind = iota
	kindWeekday
	kindWeekdayList
)

// Definition describes a known configuration key.
type Definition struct {
	Key         string
	Default     string
	Description string
	kind        valueKind
}

var Definitions = []Definition{
	{KeyDisabledDays, "2,6", "Comma-separated weekdays (0=Sunday) on which no appointments may be booked", kindWeekdayList},
	{KeyMorningStart, "9", "First bookable hour of the morning block", kindHour},
	{KeyMorningEnd, "13", "Hour at which the morning block ends (exclusive)", kindHour},
	{KeyAfternoonStart, "15", "First bookable hour of the afternoon block", kindHour},
	{KeyAfternoonEnd, "17", "Hour at which the afternoon block ends (exclusive)", kindHour},
	{KeyWindowDay, "0", "Weekday (0=Sunday) on which clients may book", kindWeekday},
	{KeyWindowStartHour, "10", "Hour the weekly booking window opens", kindHour},
	{KeyWindowEndHour, "22", "Hour the weekly booking window closes (exclusive)", kindHour},
}

var definitionByKey = func() map[string]Definition {
	m := make(map[string]Definition, len(Definitions))
	for _, d := range Definitions {
		m[d.Key] = d
	}
	return m
}()

// Lookup returns the definition for key.
func Lookup(key string) (Definition, bool) {
	d, ok := definitionByKey[key]
	return d, ok
}
