package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDaily(t *testing.T) {
	start := d(t, "2025-03-10")
	got := Expand(start, Rule{Pattern: PatternDaily}, d(t, "2025-03-14"))
	require.Len(t, got, 5)
	for i, want := range []string{"2025-03-10", "2025-03-11", "2025-03-12", "2025-03-13", "2025-03-14"} {
		assert.Equal(t, want, FormatDate(got[i]))
	}
}

func TestExpandWeeklySimple(t *testing.T) {
	// 2025-03-10 is a Monday.
	got := Expand(d(t, "2025-03-10"), Rule{Pattern: PatternWeekly}, d(t, "2025-03-31"))
	require.Len(t, got, 4)
	for i, want := range []string{"2025-03-10", "2025-03-17", "2025-03-24", "2025-03-31"} {
		assert.Equal(t, want, FormatDate(got[i]))
	}
}

func TestExpandWeeklyWithDaySet(t *testing.T) {
	// Mon/Wed/Fri starting on a Monday, two weeks out: exactly six
	// dates, each on one of the selected weekdays, none repeated.
	start := d(t, "2025-03-10")
	rule := Rule{
		Pattern:  PatternWeekly,
		Weekdays: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
	}
	got := Expand(start, rule, start.AddDate(0, 0, 13))
	require.Len(t, got, 6)
	for i, want := range []string{"2025-03-10", "2025-03-12", "2025-03-14", "2025-03-17", "2025-03-19", "2025-03-21"} {
		assert.Equal(t, want, FormatDate(got[i]))
	}
	allowed := map[time.Weekday]bool{time.Monday: true, time.Wednesday: true, time.Friday: true}
	for _, occ := range got {
		assert.True(t, allowed[occ.Weekday()])
	}
}

func TestExpandWeeklyStartOutsideDaySet(t *testing.T) {
	// The start date is always the first occurrence, even when its
	// weekday is outside the selected set.  2025-03-11 is a Tuesday.
	got := Expand(d(t, "2025-03-11"), Rule{
		Pattern:  PatternWeekly,
		Weekdays: []time.Weekday{time.Friday},
	}, d(t, "2025-03-28"))
	require.Len(t, got, 4)
	for i, want := range []string{"2025-03-11", "2025-03-14", "2025-03-21", "2025-03-28"} {
		assert.Equal(t, want, FormatDate(got[i]))
	}
}

func TestExpandMonthlyNthWeekday(t *testing.T) {
	// Third Tuesday, explicitly and via defaults derived from the
	// start date (2025-01-21 is the third Tuesday of January).
	start := d(t, "2025-01-21")
	until := d(t, "2025-04-30")
	want := []string{"2025-01-21", "2025-02-18", "2025-03-18", "2025-04-15"}

	explicit := Expand(start, Rule{Pattern: PatternMonthly, WeekOfMonth: 3, Weekday: time.Tuesday}, until)
	derived := Expand(start, Rule{Pattern: PatternMonthly}, until)

	require.Len(t, explicit, len(want))
	for i, w := range want {
		assert.Equal(t, w, FormatDate(explicit[i]))
	}
	assert.Equal(t, explicit, derived, "zero slot fields must derive from the start date")
}

func TestExpandMonthlyLastFridayFullYear(t *testing.T) {
	// Last Friday across a year: exactly one date per month, each the
	// last Friday of its month.
	start := d(t, "2025-01-31")
	got := Expand(start, Rule{Pattern: PatternMonthly, WeekOfMonth: 5, Weekday: time.Friday}, d(t, "2025-12-31"))
	require.Len(t, got, 12)
	want := []string{
		"2025-01-31", "2025-02-28", "2025-03-28", "2025-04-25",
		"2025-05-30", "2025-06-27", "2025-07-25", "2025-08-29",
		"2025-09-26", "2025-10-31", "2025-11-28", "2025-12-26",
	}
	for i, w := range want {
		assert.Equal(t, w, FormatDate(got[i]))
		assert.Equal(t, time.Friday, got[i].Weekday())
		// Nothing after it in the same month may be a Friday.
		assert.NotEqual(t, got[i].Month(), got[i].AddDate(0, 0, 7).Month())
	}
}

func TestExpandUntilBeforeStart(t *testing.T) {
	start := d(t, "2025-03-10")
	got := Expand(start, Rule{Pattern: PatternDaily}, d(t, "2025-03-01"))
	require.Len(t, got, 1, "start itself is always emitted")
	assert.True(t, got[0].Equal(start))

	same := Expand(start, Rule{Pattern: PatternWeekly}, start)
	require.Len(t, same, 1)
	assert.True(t, same[0].Equal(start))
}

func TestExpandProperties(t *testing.T) {
	// For every pattern: the first element is start, elements are
	// strictly increasing, none exceeds until, and CountOccurrences
	// agrees with len(Expand).
	start := d(t, "2025-03-10")
	until := d(t, "2025-09-30")
	rules := []Rule{
		{Pattern: PatternDaily},
		{Pattern: PatternWeekly},
		{Pattern: PatternWeekly, Weekdays: []time.Weekday{time.Tuesday, time.Saturday}},
		{Pattern: PatternMonthly, WeekOfMonth: 2, Weekday: time.Monday},
		{Pattern: PatternMonthly, WeekOfMonth: 5, Weekday: time.Sunday},
	}
	for _, rule := range rules {
		got := Expand(start, rule, until)
		require.NotEmpty(t, got)
		assert.True(t, got[0].Equal(start), "pattern %s", rule.Pattern)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i].After(got[i-1]), "pattern %s must be strictly increasing", rule.Pattern)
		}
		assert.False(t, got[len(got)-1].After(until), "pattern %s exceeded until", rule.Pattern)
		assert.Equal(t, len(got), CountOccurrences(start, rule, until), "pattern %s count mismatch", rule.Pattern)
	}
}

// The expansion loop is bounded only by the until comparison; a long
// horizon must still terminate and stay ordered.
func TestExpandTerminatesOverLongHorizon(t *testing.T) {
	start := d(t, "2020-01-06")
	got := Expand(start, Rule{
		Pattern:  PatternWeekly,
		Weekdays: []time.Weekday{time.Monday, time.Thursday},
	}, d(t, "2025-01-06"))
	assert.Greater(t, len(got), 500)
	assert.Less(t, len(got), 530)
}

func TestNthWeekdayOfMonth(t *testing.T) {
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	first, ok := nthWeekdayOfMonth(feb, 1, time.Saturday)
	require.True(t, ok)
	assert.Equal(t, "2025-02-01", FormatDate(first))

	last, ok := nthWeekdayOfMonth(feb, lastWeekOfMonth, time.Friday)
	require.True(t, ok)
	assert.Equal(t, "2025-02-28", FormatDate(last))

	fourth, ok := nthWeekdayOfMonth(feb, 4, time.Sunday)
	require.True(t, ok)
	assert.Equal(t, "2025-02-23", FormatDate(fourth))
}
