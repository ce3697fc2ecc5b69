package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func member(t *testing.T, id uint64, group string, room string, date string, parent *uint64) Booking {
	t.Helper()
	return Booking{
		ID:        id,
		GroupID:   group,
		RoomID:    id % 10,
		RoomName:  room,
		UserID:    42,
		Date:      d(t, date),
		StartTime: "09:00",
		EndTime:   "10:00",
		Status:    StatusConfirmed,
		ParentID:  parent,
	}
}

func TestClassifyRecurringGroup(t *testing.T) {
	parentID := uint64(1)
	all := []Booking{
		member(t, 1, "g1", "Main Hall", "2025-03-10", nil),
		member(t, 2, "g1", "Main Hall", "2025-03-17", &parentID),
		member(t, 3, "g1", "Main Hall", "2025-03-24", &parentID),
		member(t, 9, "other", "Annex", "2025-03-10", nil),
	}
	info := Classify(all, "g1")
	require.NotNil(t, info)
	assert.Equal(t, 3, info.Count)
	assert.Equal(t, []string{"Main Hall"}, info.Rooms)
	assert.Len(t, info.Dates, 3)
	assert.False(t, info.IsMultiRoom)
	assert.True(t, info.IsRecurring)
	assert.Equal(t, uint64(1), info.Parent.ID)
	assert.True(t, info.IsParent(1))
	assert.False(t, info.IsParent(2))
}

func TestClassifyMultiRoomGroup(t *testing.T) {
	// Two members sharing date and time but occupying different rooms.
	parentID := uint64(10)
	all := []Booking{
		member(t, 10, "g2", "Main Hall", "2025-04-01", nil),
		member(t, 11, "g2", "Annex", "2025-04-01", &parentID),
	}
	info := Classify(all, "g2")
	require.NotNil(t, info)
	assert.True(t, info.IsMultiRoom)
	assert.False(t, info.IsRecurring)
	assert.ElementsMatch(t, []string{"Main Hall", "Annex"}, info.Rooms)
	assert.Len(t, info.Dates, 1)
}

func TestClassifyCancelledMembersDoNotCount(t *testing.T) {
	// One live member plus two cancelled ones: not a series, even
	// though three rows share the group id.
	parentID := uint64(20)
	live := member(t, 20, "g3", "Main Hall", "2025-05-01", nil)
	c1 := member(t, 21, "g3", "Main Hall", "2025-05-08", &parentID)
	c1.Status = StatusCancelled
	c2 := member(t, 22, "g3", "Annex", "2025-05-01", &parentID)
	c2.Status = StatusCancelled

	assert.Nil(t, Classify([]Booking{live, c1, c2}, "g3"))

	// With a second live member the group classifies again and the
	// cancelled rows come back as history only.
	second := member(t, 23, "g3", "Main Hall", "2025-05-15", &parentID)
	info := Classify([]Booking{live, c1, c2, second}, "g3")
	require.NotNil(t, info)
	assert.Equal(t, 2, info.Count)
	assert.Len(t, info.Cancelled, 2)
	assert.Equal(t, []string{"Main Hall"}, info.Rooms, "cancelled rooms must not widen the room set")
}

func TestClassifyParentFallback(t *testing.T) {
	// No member is flagged as parent; the first live member stands in
	// rather than failing classification.
	pid := uint64(99)
	all := []Booking{
		member(t, 30, "g4", "Main Hall", "2025-06-01", &pid),
		member(t, 31, "g4", "Main Hall", "2025-06-08", &pid),
	}
	info := Classify(all, "g4")
	require.NotNil(t, info)
	assert.Equal(t, uint64(30), info.Parent.ID)
}

func TestClassifyUnknownOrEmptyGroup(t *testing.T) {
	all := []Booking{member(t, 1, "g1", "Main Hall", "2025-03-10", nil)}
	assert.Nil(t, Classify(all, "missing"))
	assert.Nil(t, Classify(all, ""))
	assert.Nil(t, Classify(nil, "g1"))
}
