package schedule

import "time"

// Pattern enumerates the supported recurrence frequencies.
type Pattern string

const (
	// PatternDaily repeats on every calendar date.
	PatternDaily Pattern = "daily"
	// PatternWeekly repeats every seven days, or on an explicit weekday set.
	PatternWeekly Pattern = "weekly"
	// PatternMonthly repeats on the Nth occurrence of a weekday each month.
	PatternMonthly Pattern = "monthly"
)

// lastWeekOfMonth is the WeekOfMonth value denoting "the last occurrence
// of the weekday in the month" rather than a literal fifth week.
const lastWeekOfMonth = 5

// Rule describes a recurrence definition as stored on a parent booking.
//
// Weekdays applies only to weekly rules; an empty set means "repeat on
// the same weekday as the start date", which the plain seven-day step
// already produces.  WeekOfMonth (1..5, 5 meaning last) and Weekday apply
// only to monthly rules; zero values are resolved from the start date.
type Rule struct {
	Pattern     Pattern
	Weekdays    []time.Weekday
	WeekOfMonth int
	Weekday     time.Weekday
}

// weekdaySet builds a membership set from the rule's weekday list.
func (r Rule) weekdaySet() map[time.Weekday]bool {
	if len(r.Weekdays) == 0 {
		return nil
	}
	set := make(map[time.Weekday]bool, len(r.Weekdays))
	for _, d := range r.Weekdays {
		set[d] = true
	}
	return set
}

// monthlySlot resolves the rule's week-of-month and weekday, defaulting
// missing values from the anchor date.  A booking made on the third
// Tuesday with no explicit slot recurs on third Tuesdays.
func (r Rule) monthlySlot(anchor time.Time) (int, time.Weekday) {
	week := r.WeekOfMonth
	if week < 1 || week > lastWeekOfMonth {
		week = (anchor.Day()-1)/7 + 1
	}
	day := r.Weekday
	if r.WeekOfMonth < 1 || r.WeekOfMonth > lastWeekOfMonth {
		day = anchor.Weekday()
	}
	return week, day
}

// Expand produces the ordered occurrence dates of a recurring series.
// The start date is always the first element, even when until precedes
// start or when start's weekday falls outside a weekly rule's day set:
// the parent booking's own date is an occurrence by definition.  Every
// subsequent date is strictly increasing and never exceeds until; until
// itself is included when it lands exactly on an occurrence.
func Expand(start time.Time, rule Rule, until time.Time) []time.Time {
	start = midnight(start)
	until = midnight(until)
	dates := []time.Time{start}
	cur := start
	for {
		next, ok := nextOccurrence(cur, start, rule, until)
		if !ok {
			break
		}
		dates = append(dates, next)
		cur = next
	}
	return dates
}

// CountOccurrences returns len(Expand(start, rule, until)) without
// materializing the dates.  It runs the identical walk, so the two can
// never disagree.
func CountOccurrences(start time.Time, rule Rule, until time.Time) int {
	start = midnight(start)
	until = midnight(until)
	n := 1
	cur := start
	for {
		next, ok := nextOccurrence(cur, start, rule, until)
		if !ok {
			break
		}
		n++
		cur = next
	}
	return n
}

// nextOccurrence advances one step from cur under the rule, reporting
// false when no further occurrence exists at or before until.  The
// anchor is the series start date and only supplies defaults for
// underspecified rules; it never moves.  Every branch advances cur by at
// least one day, so the walk terminates as soon as until is passed.
func nextOccurrence(cur, anchor time.Time, rule Rule, until time.Time) (time.Time, bool) {
	switch rule.Pattern {
	case PatternDaily:
		next := cur.AddDate(0, 0, 1)
		return next, !next.After(until)

	case PatternWeekly:
		set := rule.weekdaySet()
		if set == nil {
			next := cur.AddDate(0, 0, 7)
			return next, !next.After(until)
		}
		// Walk day by day to the next date whose weekday is selected.
		// The set is non-empty, so at most seven steps are needed.
		next := cur
		for i := 0; i < 7; i++ {
			next = next.AddDate(0, 0, 1)
			if next.After(until) {
				return time.Time{}, false
			}
			if set[next.Weekday()] {
				return next, true
			}
		}
		return time.Time{}, false

	case PatternMonthly:
		week, day := rule.monthlySlot(anchor)
		month := time.Date(cur.Year(), cur.Month(), 1, 0, 0, 0, 0, time.UTC)
		for {
			month = month.AddDate(0, 1, 0)
			if month.After(until) {
				return time.Time{}, false
			}
			candidate, ok := nthWeekdayOfMonth(month, week, day)
			if !ok {
				// No fifth occurrence this month; skip the month
				// entirely rather than sliding to a wrong slot.
				continue
			}
			if candidate.After(until) {
				return time.Time{}, false
			}
			if candidate.After(cur) {
				return candidate, true
			}
		}
	}
	return time.Time{}, false
}

// nthWeekdayOfMonth returns the date of the week'th occurrence of day in
// the month containing firstOfMonth.  week == lastWeekOfMonth selects the
// final occurrence by walking back from the first day of the following
// month.  For week 5 in a month with only four occurrences it reports
// false.
func nthWeekdayOfMonth(firstOfMonth time.Time, week int, day time.Weekday) (time.Time, bool) {
	if week == lastWeekOfMonth {
		d := firstOfMonth.AddDate(0, 1, -1)
		for d.Weekday() != day {
			d = d.AddDate(0, 0, -1)
		}
		return d, true
	}
	offset := (int(day) - int(firstOfMonth.Weekday()) + 7) % 7
	d := firstOfMonth.AddDate(0, 0, offset+(week-1)*7)
	if d.Month() != firstOfMonth.Month() {
		return time.Time{}, false
	}
	return d, true
}
