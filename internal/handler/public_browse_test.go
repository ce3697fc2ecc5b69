package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomly/room-booking-service/internal/model"
	"github.com/roomly/room-booking-service/internal/repository"
)

func dayRow(id, room uint64, name, color, start, end string) repository.BookingWithRoom {
	return repository.BookingWithRoom{
		Booking: model.Booking{
			ID:          id,
			RoomID:      room,
			UserID:      7,
			BookingDate: ymd(2026, time.March, 2),
			StartTime:   start,
			EndTime:     end,
			Status:      "CONFIRMED",
		},
		RoomName:  name,
		RoomColor: color,
	}
}

func TestBuildDaySlotsAnnotatesOverlaps(t *testing.T) {
	rows := []repository.BookingWithRoom{
		dayRow(1, 1, "Aurora", "#4F86C6", "09:00", "11:00"),
		dayRow(2, 1, "Aurora", "#4F86C6", "10:00", "12:00"),
		dayRow(3, 1, "Aurora", "#4F86C6", "13:00", "14:00"),
	}
	slots := buildDaySlots(rows)
	require.Len(t, slots, 3)

	byID := make(map[uint64]scheduleSlot, len(slots))
	for _, s := range slots {
		byID[s.BookingID] = s
	}
	assert.Equal(t, 2, byID[1].OverlapCount)
	assert.Equal(t, 2, byID[2].OverlapCount)
	assert.Zero(t, byID[3].OverlapCount)

	one := byID[1]
	assert.False(t, one.MultiRoom)
	assert.Equal(t, uint64(1), one.RoomID)
	assert.Equal(t, []string{"Aurora"}, one.RoomNames)
	assert.Equal(t, "#4F86C6", one.RoomColor)
}

func TestBuildDaySlotsCollapsesMultiRoomGroup(t *testing.T) {
	gid := "4f0c2d6e-aaaa-bbbb-cccc-000000000001"
	a := dayRow(1, 1, "Aurora", "#4F86C6", "14:00", "16:00")
	a.BookingGroupID = &gid
	b := dayRow(2, 2, "Borealis", "#C64F4F", "14:00", "16:00")
	b.BookingGroupID = &gid
	other := dayRow(9, 3, "Cirrus", "#4FC686", "15:00", "17:00")

	slots := buildDaySlots([]repository.BookingWithRoom{a, b, other})
	require.Len(t, slots, 2)

	var multi, single *scheduleSlot
	for i := range slots {
		if slots[i].MultiRoom {
			multi = &slots[i]
		} else {
			single = &slots[i]
		}
	}
	require.NotNil(t, multi)
	require.NotNil(t, single)

	assert.ElementsMatch(t, []uint64{1, 2}, multi.RoomIDs)
	assert.ElementsMatch(t, []string{"Aurora", "Borealis"}, multi.RoomNames)
	assert.Empty(t, multi.RoomColor, "a collapsed slot spans rooms and carries no single colour")
	require.NotNil(t, multi.GroupID)
	assert.Equal(t, gid, *multi.GroupID)

	assert.Equal(t, uint64(3), single.RoomID)
	assert.Equal(t, []string{"Cirrus"}, single.RoomNames)
}
