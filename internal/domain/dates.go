package domain

import "time"

const DateLayout = "2006-01-02"

// AnchorHour is the UTC hour every derived due date is pinned to.
const AnchorHour = 17

// MaxDayOffset is the furthest 1-based day offset a due date may be
// projected to, roughly ten years past the start.
const MaxDayOffset = 3650

const hoursPerDay = 24

// CalendarDate truncates t to midnight UTC of its calendar day.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaySpan returns the inclusive number of calendar days from start to end.
// A same-day span is 1; an end before the start yields a value below 1.
func DaySpan(start, end time.Time) int {
	diff := CalendarDate(end).Sub(CalendarDate(start))
	return int(diff.Hours()/hoursPerDay) + 1
}

// DueDateFromOffset projects a 1-based day offset onto start. Offset 1 is the
// start day itself; offsets below 1 are clamped to it and offsets past
// MaxDayOffset to that bound, so the result never precedes start.
func DueDateFromOffset(start time.Time, daysFromNow int) time.Time {
	daysFromNow = ClampDayOffset(daysFromNow)
	y, m, d := start.Date()
	return time.Date(y, m, d+daysFromNow-1, AnchorHour, 0, 0, 0, time.UTC)
}

// ClampDayOffset bounds a day offset to [1, MaxDayOffset].
func ClampDayOffset(daysFromNow int) int {
	switch {
	case daysFromNow < 1:
		return 1
	case daysFromNow > MaxDayOffset:
		return MaxDayOffset
	}
	return daysFromNow
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
