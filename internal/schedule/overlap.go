package schedule

// Slot is one laid-out entry in a day schedule.  A slot is either a
// single booking or a synthetic multi-room slot standing in for the
// members of one group that occupy several rooms at the same time.
// OverlapIndex and OverlapCount drive side-by-side width division
// downstream; both are zero for slots that overlap nothing.  The engine
// computes positions only, never pixel geometry.
type Slot struct {
	BookingID    uint64
	GroupID      string
	UserID       uint64
	RoomID       uint64
	RoomIDs      []uint64
	StartTime    string
	EndTime      string
	MultiRoom    bool
	OverlapIndex int
	OverlapCount int
}

// Layout annotates one day's bookings with overlap positions.
//
// Bookings sharing a group, an owner and identical times are collapsed
// into a single synthetic multi-room slot first.  Multi-room bookings
// coincide in time by definition, so the synthetic slot is excluded from
// overlap clustering and always renders in its own lane.
//
// The remaining slots are clustered by a seed-driven single pass: each
// not-yet-clustered slot seeds a cluster, and every later unclustered
// slot joins if it overlaps any member the cluster has accumulated so
// far.  This is deliberately not a connected-components computation;
// whether a chain A-B-C lands in one cluster depends on input order, and
// downstream width division relies on exactly this behavior.  Clusters
// of size one carry no annotation (implicit full width).
//
// Cancelled bookings never participate.
func Layout(day []Booking) []Slot {
	type multiKey struct {
		groupID string
		userID  uint64
		start   string
		end     string
	}

	// Pre-group pass: count live bookings per (group, owner, times).
	counts := make(map[multiKey]int)
	for _, b := range day {
		if b.Status == StatusCancelled || b.GroupID == "" {
			continue
		}
		counts[multiKey{b.GroupID, b.UserID, b.StartTime, b.EndTime}]++
	}

	var slots []Slot
	var clusterable []int // indices into slots eligible for clustering
	merged := make(map[multiKey]int)
	for _, b := range day {
		if b.Status == StatusCancelled {
			continue
		}
		if b.GroupID != "" {
			key := multiKey{b.GroupID, b.UserID, b.StartTime, b.EndTime}
			if counts[key] > 1 {
				if at, ok := merged[key]; ok {
					slots[at].RoomIDs = append(slots[at].RoomIDs, b.RoomID)
					continue
				}
				merged[key] = len(slots)
				slots = append(slots, Slot{
					BookingID: b.ID,
					GroupID:   b.GroupID,
					UserID:    b.UserID,
					RoomID:    b.RoomID,
					RoomIDs:   []uint64{b.RoomID},
					StartTime: b.StartTime,
					EndTime:   b.EndTime,
					MultiRoom: true,
				})
				continue
			}
		}
		clusterable = append(clusterable, len(slots))
		slots = append(slots, Slot{
			BookingID: b.ID,
			GroupID:   b.GroupID,
			UserID:    b.UserID,
			RoomID:    b.RoomID,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
	}

	// Seed-driven clustering over the non-synthetic slots.
	clustered := make(map[int]bool, len(clusterable))
	for si, seed := range clusterable {
		if clustered[seed] {
			continue
		}
		cluster := []int{seed}
		clustered[seed] = true
		for _, cand := range clusterable[si+1:] {
			if clustered[cand] {
				continue
			}
			for _, member := range cluster {
				if slotsOverlap(slots[member], slots[cand]) {
					cluster = append(cluster, cand)
					clustered[cand] = true
					break
				}
			}
		}
		if len(cluster) < 2 {
			continue
		}
		for pos, idx := range cluster {
			slots[idx].OverlapIndex = pos
			slots[idx].OverlapCount = len(cluster)
		}
	}
	return slots
}

// slotsOverlap applies the half-open interval test on minutes of day.
// Slots that merely touch at a boundary do not overlap.  Malformed
// times cannot overlap anything.
func slotsOverlap(a, b Slot) bool {
	as, ok := MinuteOfDay(a.StartTime)
	if !ok {
		return false
	}
	ae, ok := MinuteOfDay(a.EndTime)
	if !ok {
		return false
	}
	bs, ok := MinuteOfDay(b.StartTime)
	if !ok {
		return false
	}
	be, ok := MinuteOfDay(b.EndTime)
	if !ok {
		return false
	}
	return as < be && ae > bs
}

// Overlaps reports whether two time ranges given as "HH:MM" strings
// intersect under the half-open rule.  It is the conflict test used
// when validating a new booking against a room's existing bookings.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return slotsOverlap(
		Slot{StartTime: aStart, EndTime: aEnd},
		Slot{StartTime: bStart, EndTime: bEnd},
	)
}
