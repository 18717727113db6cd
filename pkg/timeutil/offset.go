// Package timeutil holds the calendar arithmetic used to turn relative
// template offsets into concrete dates, along with the small text formats
// used to spell offsets and report windows on the command line.
package timeutil

import (
	"fmt"
	"time"
)

// Unit is the calendar granularity an offset is expressed in.
type Unit string

const (
	Days   Unit = "days"
	Weeks  Unit = "weeks"
	Months Unit = "months"
)

const (
	// Years outside this range cannot be written in the fixed RFC3339
	// timestamp form used by backups.
	minYear = 1
	maxYear = 9999

	// maxMagnitude keeps week arithmetic far away from int overflow. Any
	// offset this large lands outside [minYear, maxYear] anyway.
	maxMagnitude = 10_000_000
)

// Valid reports whether u is one of the known units.
func (u Unit) Valid() bool {
	switch u {
	case Days, Weeks, Months:
		return true
	default:
		return false
	}
}

// TimeOffset is a signed, unit-typed displacement from a reference date.
type TimeOffset struct {
	Magnitude int  `json:"magnitude"`
	Unit      Unit `json:"unit"`
	Before    bool `json:"before"`
}

// Before returns an offset of n units before the reference date.
func Before(n int, u Unit) TimeOffset {
	return TimeOffset{Magnitude: n, Unit: u, Before: true}
}

// After returns an offset of n units after the reference date.
func After(n int, u Unit) TimeOffset {
	return TimeOffset{Magnitude: n, Unit: u}
}

// Signed returns the displacement as a signed count of units.
func (o TimeOffset) Signed() int {
	if o.Before {
		return -o.Magnitude
	}
	return o.Magnitude
}

// Negate flips the direction of the offset.
func (o TimeOffset) Negate() TimeOffset {
	o.Before = !o.Before
	return o
}

// DateCalculationError is returned when an offset cannot be applied to a
// reference date. It indicates bad data or an unrepresentable result, never a
// transient condition.
type DateCalculationError struct {
	Reference time.Time
	Offset    TimeOffset
	Message   string
}

func (e *DateCalculationError) Error() string {
	return fmt.Sprintf("timeutil: cannot apply offset %s to %s: %s",
		e.Offset, e.Reference.Format(time.RFC3339), e.Message)
}

// CalculateDate shifts reference by offset. Days and weeks are added as
// calendar days, so the wall-clock time of reference survives daylight saving
// changes. Months are calendar months; when the target month is shorter the
// day of month is clamped to its last day.
func CalculateDate(reference time.Time, offset TimeOffset) (time.Time, error) {
	fail := func(format string, args ...any) (time.Time, error) {
		return time.Time{}, &DateCalculationError{
			Reference: reference,
			Offset:    offset,
			Message:   fmt.Sprintf(format, args...),
		}
	}

	if offset.Magnitude < 0 {
		return fail("negative magnitude %d", offset.Magnitude)
	}
	if offset.Magnitude > maxMagnitude {
		return fail("magnitude %d is out of range", offset.Magnitude)
	}

	delta := offset.Signed()
	var out time.Time
	switch offset.Unit {
	case Days:
		out = reference.AddDate(0, 0, delta)
	case Weeks:
		out = reference.AddDate(0, 0, 7*delta)
	case Months:
		out = addMonths(reference, delta)
	default:
		return fail("unknown unit %q", offset.Unit)
	}

	if y := out.Year(); y < minYear || y > maxYear {
		return fail("resulting year %d is not representable", y)
	}
	return out, nil
}

func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	// Normalise year/month through the first of the target month so day
	// overflow never spills into the following month.
	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
