// Package dateutil pins the date conventions used for seat accounting:
// override windows are compared at a fixed 07:00 checkpoint of the target
// date, while bookings accumulate over the whole calendar day.
package dateutil

import "time"

const (
	DateLayout = "2006-01-02"

	checkpointHour = 7
)

// Checkpoint returns 07:00 local time on the calendar date of t.
// Window containment checks all use this instant so that a date either
// falls inside an override window or it does not, regardless of the
// time-of-day the request arrived.
func Checkpoint(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), checkpointHour, 0, 0, 0, loc)
}

// DayBounds returns the inclusive start and exclusive end of t's calendar
// day in loc. Booking sums cover this full window.
func DayBounds(t time.Time, loc *time.Location) (start, end time.Time) {
	t = t.In(loc)
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// ParseDate parses a YYYY-MM-DD string in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a, b = a.In(loc), b.In(loc)
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// BeforeToday reports whether the calendar date of t is strictly before
// today's date in loc. Comparison happens at the checkpoint instant so a
// booking for today is never rejected as past, whatever the current time.
func BeforeToday(t time.Time, now time.Time, loc *time.Location) bool {
	return Checkpoint(t, loc).Before(Checkpoint(now, loc))
}
