package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultWindow is the fallback look-ahead used for upcoming reports.
	DefaultWindow = "2w"
)

var (
	offsetPattern = regexp.MustCompile(`^([+-]?)\s*(\d+)\s*([a-z]+)(?:\s*[-\s]\s*(before|after))?$`)
	offsetUnits   = map[string]Unit{
		"d":      Days,
		"day":    Days,
		"days":   Days,
		"w":      Weeks,
		"wk":     Weeks,
		"wks":    Weeks,
		"week":   Weeks,
		"weeks":  Weeks,
		"m":      Months,
		"mo":     Months,
		"month":  Months,
		"months": Months,
	}
	unitSuffix = map[Unit]string{
		Days:   "d",
		Weeks:  "w",
		Months: "m",
	}

	windowPattern = regexp.MustCompile(`^\s*(\d+)\s*([a-z]+)`)
	windowUnits   = []struct {
		label   string
		aliases []string
		value   time.Duration
	}{
		{"w", []string{"w", "wk", "wks", "week", "weeks"}, 7 * 24 * time.Hour},
		{"d", []string{"d", "day", "days"}, 24 * time.Hour},
		{"h", []string{"h", "hr", "hrs", "hour", "hours"}, time.Hour},
	}
)

// String renders the offset in the compact form accepted by ParseOffset,
// for example "4w-before" or "10d-after".
func (o TimeOffset) String() string {
	suffix, ok := unitSuffix[o.Unit]
	if !ok {
		suffix = string(o.Unit)
	}
	direction := "after"
	if o.Before {
		direction = "before"
	}
	return fmt.Sprintf("%d%s-%s", o.Magnitude, suffix, direction)
}

// ParseOffset parses offsets such as "4w-before", "3 days after", "-2m" or
// "10d". A leading minus means before; with no sign and no direction the
// offset points after the reference.
func ParseOffset(input string) (TimeOffset, error) {
	text := strings.ToLower(strings.TrimSpace(input))
	matches := offsetPattern.FindStringSubmatch(text)
	if matches == nil {
		return TimeOffset{}, fmt.Errorf("invalid offset %q", input)
	}
	sign, digits, unitText, direction := matches[1], matches[2], matches[3], matches[4]

	magnitude, err := strconv.Atoi(digits)
	if err != nil {
		return TimeOffset{}, fmt.Errorf("invalid offset magnitude %q: %w", digits, err)
	}
	unit, ok := offsetUnits[unitText]
	if !ok {
		return TimeOffset{}, fmt.Errorf("unsupported offset unit %q", unitText)
	}

	before := sign == "-"
	switch direction {
	case "before":
		if sign == "+" {
			return TimeOffset{}, fmt.Errorf("offset %q mixes + with before", input)
		}
		before = true
	case "after":
		if sign == "-" {
			return TimeOffset{}, fmt.Errorf("offset %q mixes - with after", input)
		}
	}
	return TimeOffset{Magnitude: magnitude, Unit: unit, Before: before}, nil
}

// ParseWindow parses a look-ahead window such as "2w", "10d" or "1w3d" and
// returns the duration along with its canonical label. An empty input yields
// DefaultWindow.
func ParseWindow(input string) (time.Duration, string, error) {
	remaining := strings.ToLower(strings.TrimSpace(input))
	if remaining == "" {
		remaining = DefaultWindow
	}

	total := time.Duration(0)
	for len(remaining) > 0 {
		matches := windowPattern.FindStringSubmatch(remaining)
		if len(matches) != 3 {
			return 0, "", fmt.Errorf("invalid window segment %q", strings.TrimSpace(remaining))
		}
		value, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return 0, "", fmt.Errorf("invalid window value %q: %w", matches[1], err)
		}
		base, ok := windowUnit(matches[2])
		if !ok {
			return 0, "", fmt.Errorf("unsupported window unit %q", matches[2])
		}
		total += time.Duration(value) * base
		remaining = strings.TrimSpace(remaining[len(matches[0]):])
	}

	if total <= 0 {
		return 0, "", fmt.Errorf("window must be greater than zero")
	}
	return total, FormatWindow(total), nil
}

func windowUnit(alias string) (time.Duration, bool) {
	for _, u := range windowUnits {
		for _, a := range u.aliases {
			if a == alias {
				return u.value, true
			}
		}
	}
	return 0, false
}

// FormatWindow renders a duration using week/day/hour tokens. Anything
// shorter than an hour is dropped.
func FormatWindow(d time.Duration) string {
	var parts []string
	remaining := d
	for _, u := range windowUnits {
		if remaining < u.value {
			continue
		}
		count := remaining / u.value
		remaining -= count * u.value
		parts = append(parts, fmt.Sprintf("%d%s", count, u.label))
	}
	if len(parts) == 0 {
		return "0h"
	}
	return strings.Join(parts, "")
}

// LayoutISO is the calendar-date layout accepted on the command line.
const LayoutISO = "2006-01-02"

// ParseDate accepts a calendar date ("2025-03-31"), read as midnight in loc,
// or a full RFC3339 timestamp.
func ParseDate(input string, loc *time.Location) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("date required")
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(LayoutISO, input, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC3339", input)
	}
	return t, nil
}
