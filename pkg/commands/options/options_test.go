package options

import (
	"testing"
	"time"
)

func TestParseDateShortFormRollsForward(t *testing.T) {
	now := time.Date(2025, time.December, 5, 10, 0, 0, 0, time.Local)

	got, err := ParseDate("1/3", now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.January || got.Day() != 3 {
		t.Errorf("expected 2026-01-03, got %v", got)
	}

	got, err = ParseDate("12/5", now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Year() != 2025 {
		t.Errorf("today should not roll forward, got %v", got)
	}
}

func TestParseDateISO(t *testing.T) {
	got, err := ParseDate("2025-03-31", time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Month() != time.March || got.Day() != 31 {
		t.Errorf("unexpected date %v", got)
	}
	if _, err := ParseDate("someday", time.Now()); err == nil {
		t.Errorf("expected an error")
	}
}

func TestParseDateRejectsMissingLeapDay(t *testing.T) {
	now := time.Date(2025, time.January, 10, 10, 0, 0, 0, time.Local)
	if got, err := ParseDate("2/29", now); err == nil {
		t.Errorf("expected an error, got %v", got)
	}

	leap := time.Date(2024, time.January, 10, 10, 0, 0, 0, time.Local)
	got, err := ParseDate("2/29", leap)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Month() != time.February || got.Day() != 29 {
		t.Errorf("expected Feb 29, got %v", got)
	}
}
