package timeutil

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCalculateDateUnits(t *testing.T) {
	ref := date(2025, time.March, 31)
	tests := []struct {
		name   string
		offset TimeOffset
		want   time.Time
	}{
		{"zero", After(0, Days), ref},
		{"days before", Before(10, Days), date(2025, time.March, 21)},
		{"days after", After(1, Days), date(2025, time.April, 1)},
		{"weeks before", Before(4, Weeks), date(2025, time.March, 3)},
		{"weeks after", After(2, Weeks), date(2025, time.April, 14)},
		{"months before clamps", Before(1, Months), date(2025, time.February, 28)},
		{"months after clamps", After(2, Months), date(2025, time.May, 31)},
		{"months across year", Before(3, Months), date(2024, time.December, 31)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CalculateDate(ref, tc.offset)
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got), "want %s, got %s", tc.want, got)
		})
	}
}

func TestCalculateDateLeapYearClamp(t *testing.T) {
	got, err := CalculateDate(date(2024, time.January, 31), After(1, Months))
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.February, 29), got)
}

func TestCalculateDatePreservesTimeOfDay(t *testing.T) {
	loc := time.FixedZone("test", 2*60*60)
	ref := time.Date(2025, time.March, 31, 17, 45, 10, 0, loc)

	got, err := CalculateDate(ref, Before(1, Weeks))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.March, 24, 17, 45, 10, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestCalculateDateRoundTrip(t *testing.T) {
	ref := date(2025, time.March, 15)
	for _, u := range []Unit{Days, Weeks, Months} {
		for _, n := range []int{0, 1, 5, 13} {
			o := Before(n, u)
			there, err := CalculateDate(ref, o)
			require.NoError(t, err)
			back, err := CalculateDate(there, o.Negate())
			require.NoError(t, err)
			assert.Equal(t, ref, back, "unit %s magnitude %d", u, n)
		}
	}
}

func TestCalculateDateErrors(t *testing.T) {
	ref := date(2025, time.March, 31)
	tests := []struct {
		name   string
		ref    time.Time
		offset TimeOffset
	}{
		{"negative magnitude", ref, TimeOffset{Magnitude: -1, Unit: Days}},
		{"unknown unit", ref, TimeOffset{Magnitude: 1, Unit: "fortnights"}},
		{"huge magnitude", ref, After(maxMagnitude+1, Days)},
		{"year overflow", date(9999, time.December, 1), After(1, Months)},
		{"year underflow", date(1, time.January, 5), Before(1, Weeks)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalculateDate(tc.ref, tc.offset)
			require.Error(t, err)
			var dce *DateCalculationError
			require.True(t, errors.As(err, &dce))
			assert.NotEmpty(t, dce.Message)
		})
	}
}

func TestParseOffset(t *testing.T) {
	tests := []struct {
		in   string
		want TimeOffset
	}{
		{"4w-before", Before(4, Weeks)},
		{"3 days after", After(3, Days)},
		{"-2m", Before(2, Months)},
		{"+1 week", After(1, Weeks)},
		{"10d", After(10, Days)},
		{" 1 Month Before ", Before(1, Months)},
	}
	for _, tc := range tests {
		got, err := ParseOffset(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		again, err := ParseOffset(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}

	for _, bad := range []string{"", "w", "4y", "-4w-after", "+4w before", "four weeks"} {
		_, err := ParseOffset(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseWindow(t *testing.T) {
	dur, label, err := ParseWindow("")
	require.NoError(t, err)
	assert.Equal(t, 14*24*time.Hour, dur)
	assert.Equal(t, "2w", label)

	dur, label, err = ParseWindow("1w3d12h")
	require.NoError(t, err)
	assert.Equal(t, (10*24+12)*time.Hour, dur)
	assert.Equal(t, "1w3d12h", label)

	_, _, err = ParseWindow("soon")
	assert.Error(t, err)
	_, _, err = ParseWindow("0d")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-03-31", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, date(2025, time.March, 31), got)

	got, err = ParseDate("2025-03-31T09:30:00Z", nil)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, time.March, 31, 9, 30, 0, 0, time.UTC)))

	for _, bad := range []string{"", "31/03/2025", "2025-02-30"} {
		_, err := ParseDate(bad, time.UTC)
		assert.Error(t, err, bad)
	}
}
