// Package schedule implements the booking recurrence and conflict engine.
// It expands recurring-booking definitions into concrete dated occurrences,
// groups bookings that belong to one logical reservation, lays out
// temporally overlapping bookings for side-by-side display and computes
// series extensions.  Every function is a pure projection of its inputs:
// there is no I/O, no shared state and no ambient clock.  Callers pass
// "today" explicitly where a fallback date is needed.
//
// Dates inside the engine are canonical calendar dates: time.Time values
// pinned to midnight UTC with the time-of-day and original zone stripped.
// Times-of-day cross the engine boundary as 24-hour "HH:MM" strings.
package schedule

import (
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order when normalizing a string input.  The
// plain date layout comes first because Normalize prefers the date-only
// prefix of a longer timestamp; the remaining layouts catch strings whose
// first ten characters are not a valid date on their own.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02 Jan 2006",
}

// Normalize converts an arbitrary date representation into a canonical
// calendar date.  It accepts a time.Time, a date string that may carry a
// trailing time or timezone component, or an epoch value in seconds or
// milliseconds.  Only the calendar date survives; the result is pinned to
// midnight UTC.  Unparseable or unsupported input falls back to today
// rather than failing, so a bad date can never break a render.  Normalize
// is idempotent: Normalize(Normalize(x, today), today) == Normalize(x, today).
func Normalize(v any, today time.Time) time.Time {
	switch t := v.(type) {
	case time.Time:
		return midnight(t)
	case *time.Time:
		if t != nil {
			return midnight(*t)
		}
	case string:
		if d, ok := parseDateString(t); ok {
			return d
		}
	case int64:
		return midnight(fromEpoch(t))
	case int:
		return midnight(fromEpoch(int64(t)))
	case float64:
		return midnight(fromEpoch(int64(t)))
	}
	return midnight(today)
}

// ParseDate normalizes a date string, falling back to today when the
// string cannot be interpreted.  It is a convenience wrapper around
// Normalize for the common string case.
func ParseDate(s string, today time.Time) time.Time {
	return Normalize(s, today)
}

// TryParseDate parses a date string strictly, reporting false when the
// string cannot be interpreted.  Unlike ParseDate it never substitutes a
// fallback, which makes it the right entry point for validating user
// supplied query parameters.
func TryParseDate(s string) (time.Time, bool) {
	return parseDateString(s)
}

// parseDateString extracts the calendar date from s.  A ten-character
// date prefix wins over any trailing time or zone suffix so that
// "2025-03-10T23:30:00-07:00" and "2025-03-10" normalize identically.
func parseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 10 {
		if d, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return midnight(d), true
		}
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return midnight(d), true
		}
	}
	// Bare epoch numbers occasionally arrive as strings.
	if n, err := strconv.ParseInt(s, 10, 64); err == nil && n > 0 {
		return midnight(fromEpoch(n)), true
	}
	return time.Time{}, false
}

// fromEpoch interprets n as epoch milliseconds when it is too large to be
// a plausible epoch-seconds value, otherwise as epoch seconds.
func fromEpoch(n int64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(n).UTC()
	}
	return time.Unix(n, 0).UTC()
}

// midnight strips the time-of-day from t using t's own calendar date and
// repins the result to UTC.  Converting via the date components rather
// than Truncate avoids off-by-one-day drift for zoned inputs.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b denote the same calendar date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// FormatDate renders a canonical calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// MinuteOfDay parses a 24-hour "HH:MM" string into minutes since
// midnight.  It reports false for malformed input or out-of-range
// components.
func MinuteOfDay(hhmm string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ValidTimeRange reports whether start and end are well-formed "HH:MM"
// values with start strictly before end within the same day.  Overnight
// spans are not representable.
func ValidTimeRange(start, end string) bool {
	s, ok := MinuteOfDay(start)
	if !ok {
		return false
	}
	e, ok := MinuteOfDay(end)
	if !ok {
		return false
	}
	return s < e
}
