package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdditionalDatesWeekly(t *testing.T) {
	// Weekly series whose latest member date is 2025-03-10, extended to
	// 2025-03-31: exactly the three Mondays after the 10th.
	series := Series{
		Rule:  Rule{Pattern: PatternWeekly},
		Dates: []time.Time{d(t, "2025-02-24"), d(t, "2025-03-03"), d(t, "2025-03-10")},
	}
	got := AdditionalDates(series, d(t, "2025-03-31"))
	require.Len(t, got, 3)
	for i, want := range []string{"2025-03-17", "2025-03-24", "2025-03-31"} {
		assert.Equal(t, want, FormatDate(got[i]))
	}
	assert.Equal(t, 3, AdditionalOccurrences(series, d(t, "2025-03-31")))
}

func TestAdditionalDatesNoOpBounds(t *testing.T) {
	series := Series{
		Rule:  Rule{Pattern: PatternWeekly},
		Dates: []time.Time{d(t, "2025-03-03"), d(t, "2025-03-10")},
	}
	// The new end equal to or before the latest member date is a no-op.
	assert.Empty(t, AdditionalDates(series, d(t, "2025-03-10")))
	assert.Empty(t, AdditionalDates(series, d(t, "2025-02-01")))
	assert.Zero(t, AdditionalOccurrences(series, d(t, "2025-03-10")))
	assert.Zero(t, AdditionalOccurrences(series, d(t, "2025-02-01")))
}

func TestAdditionalDatesAnchorsOnMaxMemberDate(t *testing.T) {
	// Member dates arrive unordered; the walk must anchor on the max,
	// not on the first or on any stored recurrence end date.
	series := Series{
		Rule:  Rule{Pattern: PatternDaily},
		Dates: []time.Time{d(t, "2025-05-03"), d(t, "2025-05-01"), d(t, "2025-05-02")},
	}
	got := AdditionalDates(series, d(t, "2025-05-05"))
	require.Len(t, got, 2)
	assert.Equal(t, "2025-05-04", FormatDate(got[0]))
	assert.Equal(t, "2025-05-05", FormatDate(got[1]))
}

func TestAdditionalDatesNeverDuplicateExisting(t *testing.T) {
	series := Series{
		Rule: Rule{
			Pattern:  PatternWeekly,
			Weekdays: []time.Weekday{time.Monday, time.Wednesday},
		},
		Dates: []time.Time{d(t, "2025-03-10"), d(t, "2025-03-12")},
	}
	existing := make(map[string]bool)
	for _, date := range series.Dates {
		existing[FormatDate(date)] = true
	}
	got := AdditionalDates(series, d(t, "2025-03-26"))
	require.NotEmpty(t, got)
	for _, date := range got {
		assert.False(t, existing[FormatDate(date)], "regenerated existing date %s", FormatDate(date))
	}
	for i, want := range []string{"2025-03-17", "2025-03-19", "2025-03-24", "2025-03-26"} {
		assert.Equal(t, want, FormatDate(got[i]))
	}
}

func TestAdditionalDatesMonthly(t *testing.T) {
	series := Series{
		Rule:  Rule{Pattern: PatternMonthly, WeekOfMonth: 5, Weekday: time.Friday},
		Dates: []time.Time{d(t, "2025-01-31"), d(t, "2025-02-28")},
	}
	got := AdditionalDates(series, d(t, "2025-04-30"))
	require.Len(t, got, 2)
	assert.Equal(t, "2025-03-28", FormatDate(got[0]))
	assert.Equal(t, "2025-04-25", FormatDate(got[1]))
}

func TestAdditionalDatesEmptySeries(t *testing.T) {
	assert.Empty(t, AdditionalDates(Series{Rule: Rule{Pattern: PatternDaily}}, d(t, "2025-03-31")))
	assert.Zero(t, AdditionalOccurrences(Series{Rule: Rule{Pattern: PatternDaily}}, d(t, "2025-03-31")))
}
