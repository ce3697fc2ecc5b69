package schedule

import "time"

// Series describes an existing recurring group for extension purposes.
// Rule is the parent booking's recurrence definition.  Dates holds the
// occurrence dates already persisted for the group's members; the walk
// anchors on their maximum, not on the stored recurrence end date, since
// the two can diverge when occurrences were added out of band.
type Series struct {
	Rule  Rule
	Dates []time.Time
}

// latest returns the greatest member date, normalized.  The zero time is
// returned for an empty series.
func (s Series) latest() time.Time {
	var max time.Time
	for _, d := range s.Dates {
		d = midnight(d)
		if d.After(max) {
			max = d
		}
	}
	return max
}

// AdditionalDates computes exactly the occurrence dates an extension to
// newEnd would append, in order, strictly after the latest existing
// member date and up to and including newEnd.  Existing dates are never
// regenerated.  The result is empty when the series has no members or
// when newEnd is not after the latest existing date; callers treat that
// as a no-op rather than an error.
func AdditionalDates(s Series, newEnd time.Time) []time.Time {
	anchor := s.latest()
	if anchor.IsZero() {
		return nil
	}
	newEnd = midnight(newEnd)
	if !newEnd.After(anchor) {
		return nil
	}
	var dates []time.Time
	cur := anchor
	for {
		next, ok := nextOccurrence(cur, anchor, s.Rule, newEnd)
		if !ok {
			break
		}
		dates = append(dates, next)
		cur = next
	}
	return dates
}

// AdditionalOccurrences counts the dates AdditionalDates would return
// without materializing them.  Both run the same walk.
func AdditionalOccurrences(s Series, newEnd time.Time) int {
	anchor := s.latest()
	if anchor.IsZero() {
		return 0
	}
	newEnd = midnight(newEnd)
	if !newEnd.After(anchor) {
		return 0
	}
	n := 0
	cur := anchor
	for {
		next, ok := nextOccurrence(cur, anchor, s.Rule, newEnd)
		if !ok {
			break
		}
		n++
		cur = next
	}
	return n
}
