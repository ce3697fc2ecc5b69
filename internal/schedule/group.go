package schedule

import "time"

// Booking status values as persisted.  Cancelled bookings are retained
// for history but excluded from conflict and grouping arithmetic.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Booking is the engine's view of one persisted booking row.  It carries
// only the fields the engine reasons about; the repository layer owns
// the full record.
type Booking struct {
	ID        uint64
	GroupID   string
	RoomID    uint64
	RoomName  string
	UserID    uint64
	Date      time.Time
	StartTime string
	EndTime   string
	Status    string
	ParentID  *uint64
}

// GroupInfo is the classification of one booking group: the set of
// bookings created by a single user action, which may span multiple
// rooms, multiple dates, or both.
type GroupInfo struct {
	GroupID     string
	Count       int
	Rooms       []string
	Dates       []time.Time
	IsMultiRoom bool
	IsRecurring bool
	Parent      Booking
	Members     []Booking
	Cancelled   []Booking
}

// IsParent reports whether the booking with the given id holds the
// group's authoritative recurrence definition.
func (g *GroupInfo) IsParent(id uint64) bool {
	return g.Parent.ID == id
}

// Classify partitions the given bookings by groupID and classifies the
// result.  It returns nil when fewer than two non-cancelled members
// share the group: a group with one surviving booking is not a series
// and callers fall back to single-booking semantics.  Cancelled members
// do not count toward the threshold or the room/date sets but are
// returned separately so a series view can still show history.
//
// The parent is the live member whose ParentID is nil.  When no member
// is flagged, the first live member stands in; an inconsistent group
// should degrade, not fail classification.
//
// Classify is a pure projection over the live booking set.  Group
// membership changes as bookings are added, edited or cancelled, so the
// result must be recomputed on every query and never cached.
func Classify(bookings []Booking, groupID string) *GroupInfo {
	if groupID == "" {
		return nil
	}
	var live, cancelled []Booking
	for _, b := range bookings {
		if b.GroupID != groupID {
			continue
		}
		if b.Status == StatusCancelled {
			cancelled = append(cancelled, b)
			continue
		}
		live = append(live, b)
	}
	if len(live) < 2 {
		return nil
	}

	info := &GroupInfo{
		GroupID:   groupID,
		Count:     len(live),
		Members:   live,
		Cancelled: cancelled,
		Parent:    live[0],
	}

	roomSeen := make(map[string]bool)
	dateSeen := make(map[string]bool)
	parentFound := false
	for _, b := range live {
		if !roomSeen[b.RoomName] {
			roomSeen[b.RoomName] = true
			info.Rooms = append(info.Rooms, b.RoomName)
		}
		key := FormatDate(b.Date)
		if !dateSeen[key] {
			dateSeen[key] = true
			info.Dates = append(info.Dates, midnight(b.Date))
		}
		if !parentFound && b.ParentID == nil {
			info.Parent = b
			parentFound = true
		}
	}
	info.IsMultiRoom = len(info.Rooms) > 1
	info.IsRecurring = len(info.Dates) > 1
	return info
}
