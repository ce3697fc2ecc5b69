package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testToday = time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

func d(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return parsed
}

func TestNormalizeStrings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"date only", "2025-03-10", "2025-03-10"},
		{"rfc3339 utc", "2025-03-10T09:30:00Z", "2025-03-10"},
		{"rfc3339 negative offset", "2025-03-10T23:30:00-07:00", "2025-03-10"},
		{"datetime space", "2025-03-10 15:04:05", "2025-03-10"},
		{"surrounding whitespace", "  2025-03-10  ", "2025-03-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in, testToday)
			assert.Equal(t, tc.want, FormatDate(got))
			assert.Equal(t, time.UTC, got.Location())
			assert.True(t, got.Equal(midnight(got)), "result must be pinned to midnight")
		})
	}
}

// A string with a trailing time/timezone component and its date-only
// prefix must always normalize to the same canonical date.
func TestNormalizeDatePrefixRoundTrip(t *testing.T) {
	full := "2025-11-02T01:30:00-08:00"
	prefix := full[:10]
	assert.Equal(t, Normalize(prefix, testToday), Normalize(full, testToday))
}

func TestNormalizeTimeInputs(t *testing.T) {
	zone := time.FixedZone("UTC+13", 13*3600)
	late := time.Date(2025, time.March, 10, 23, 45, 0, 0, zone)
	got := Normalize(late, testToday)
	// The calendar date in the input's own zone survives; no instant
	// conversion may shift it across midnight.
	assert.Equal(t, "2025-03-10", FormatDate(got))

	ptr := &late
	assert.Equal(t, got, Normalize(ptr, testToday))
}

func TestNormalizeEpoch(t *testing.T) {
	// 2025-03-10T00:00:00Z in seconds and milliseconds.
	assert.Equal(t, "2025-03-10", FormatDate(Normalize(int64(1741564800), testToday)))
	assert.Equal(t, "2025-03-10", FormatDate(Normalize(int64(1741564800000), testToday)))
}

func TestNormalizeFallsBackToToday(t *testing.T) {
	for _, in := range []any{"not a date", "", nil, struct{}{}, (*time.Time)(nil)} {
		got := Normalize(in, testToday)
		assert.True(t, SameDay(got, testToday), "input %#v should fall back to today", in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []any{
		"2025-03-10T23:30:00-07:00",
		time.Date(2025, time.March, 10, 18, 0, 0, 0, time.Local),
		int64(1741564800),
		"garbage",
	}
	for _, in := range inputs {
		once := Normalize(in, testToday)
		twice := Normalize(once, testToday)
		assert.True(t, once.Equal(twice), "Normalize must be idempotent for %#v", in)
	}
}

func TestTryParseDate(t *testing.T) {
	got, ok := TryParseDate("2025-03-10")
	require.True(t, ok)
	assert.Equal(t, d(t, "2025-03-10"), got)

	for _, in := range []string{"", "garbage", "10/03/2025"} {
		_, ok := TryParseDate(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestMinuteOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 570, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"9am", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := MinuteOfDay(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestValidTimeRange(t *testing.T) {
	assert.True(t, ValidTimeRange("09:00", "10:30"))
	assert.False(t, ValidTimeRange("10:00", "10:00"), "zero-length range")
	assert.False(t, ValidTimeRange("18:00", "09:00"), "overnight spans are not representable")
	assert.False(t, ValidTimeRange("bad", "10:00"))
}
