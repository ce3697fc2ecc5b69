package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomly/room-booking-service/internal/model"
	"github.com/roomly/room-booking-service/internal/schedule"
)

func ymd(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func intPtr(n int) *int { return &n }

func TestParseBookingReqValidation(t *testing.T) {
	cases := []struct {
		name string
		req  bookingReq
		want string
	}{
		{
			name: "no rooms",
			req:  bookingReq{Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00"},
			want: "room_ids is required",
		},
		{
			name: "only zero room ids",
			req:  bookingReq{RoomIDs: []uint64{0, 0}, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00"},
			want: "room_ids is required",
		},
		{
			name: "bad date",
			req:  bookingReq{RoomIDs: []uint64{1}, Date: "02/03/2026", StartTime: "09:00", EndTime: "10:00"},
			want: "date must be a valid YYYY-MM-DD value",
		},
		{
			name: "inverted times",
			req:  bookingReq{RoomIDs: []uint64{1}, Date: "2026-03-02", StartTime: "11:00", EndTime: "10:00"},
			want: "start_time must be before end_time, both HH:MM",
		},
		{
			name: "unknown pattern",
			req: bookingReq{
				RoomIDs: []uint64{1}, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
				Recurrence: &recurrenceReq{Pattern: "fortnightly", EndDate: "2026-04-01"},
			},
			want: "recurrence.pattern must be daily, weekly or monthly",
		},
		{
			name: "end not after start",
			req: bookingReq{
				RoomIDs: []uint64{1}, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
				Recurrence: &recurrenceReq{Pattern: "daily", EndDate: "2026-03-02"},
			},
			want: "recurrence.end_date must be after date",
		},
		{
			name: "weekday out of range",
			req: bookingReq{
				RoomIDs: []uint64{1}, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
				Recurrence: &recurrenceReq{Pattern: "weekly", EndDate: "2026-03-31", Days: []int{1, 7}},
			},
			want: "recurrence.days entries must be 0 (Sunday) through 6 (Saturday)",
		},
		{
			name: "week of month out of range",
			req: bookingReq{
				RoomIDs: []uint64{1}, Date: "2026-03-02", StartTime: "09:00", EndTime: "10:00",
				Recurrence: &recurrenceReq{Pattern: "monthly", EndDate: "2026-06-30", WeekOfMonth: 6},
			},
			want: "recurrence.week_of_month must be 1 through 5",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, _, errMsg := parseBookingReq(&tc.req)
			assert.Equal(t, tc.want, errMsg)
		})
	}
}

func TestParseBookingReqStandaloneDedupesRooms(t *testing.T) {
	req := bookingReq{
		RoomIDs:   []uint64{3, 3, 0, 5},
		Date:      "2026-03-02",
		StartTime: "09:00",
		EndTime:   "10:30",
	}
	start, dates, rule, roomIDs, errMsg := parseBookingReq(&req)
	require.Empty(t, errMsg)
	assert.Nil(t, rule)
	assert.Equal(t, []uint64{3, 5}, roomIDs)
	assert.Equal(t, ymd(2026, time.March, 2), start)
	require.Len(t, dates, 1)
	assert.Equal(t, start, dates[0])
}

func TestParseBookingReqDailyExpansion(t *testing.T) {
	req := bookingReq{
		RoomIDs:    []uint64{1},
		Date:       "2026-03-02",
		StartTime:  "09:00",
		EndTime:    "10:00",
		Recurrence: &recurrenceReq{Pattern: "daily", EndDate: "2026-03-05"},
	}
	_, dates, rule, _, errMsg := parseBookingReq(&req)
	require.Empty(t, errMsg)
	require.NotNil(t, rule)
	assert.Equal(t, schedule.PatternDaily, rule.Pattern)
	want := []time.Time{
		ymd(2026, time.March, 2),
		ymd(2026, time.March, 3),
		ymd(2026, time.March, 4),
		ymd(2026, time.March, 5),
	}
	assert.Equal(t, want, dates)
}

func TestParseBookingReqWeeklyDaySet(t *testing.T) {
	// 2026-03-02 is a Monday; Monday and Wednesday through Sunday the
	// 8th yields exactly the Monday and the Wednesday.
	req := bookingReq{
		RoomIDs:    []uint64{1},
		Date:       "2026-03-02",
		StartTime:  "09:00",
		EndTime:    "10:00",
		Recurrence: &recurrenceReq{Pattern: "weekly", EndDate: "2026-03-08", Days: []int{1, 3}},
	}
	_, dates, rule, _, errMsg := parseBookingReq(&req)
	require.Empty(t, errMsg)
	require.NotNil(t, rule)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, rule.Weekdays)
	want := []time.Time{
		ymd(2026, time.March, 2),
		ymd(2026, time.March, 4),
	}
	assert.Equal(t, want, dates)
}

func TestParseBookingReqMonthlyDerivesWeekFromStart(t *testing.T) {
	// 2026-03-17 is the third Tuesday.  A stated weekday without a week
	// of month anchors on the start date's week.
	req := bookingReq{
		RoomIDs:    []uint64{1},
		Date:       "2026-03-17",
		StartTime:  "09:00",
		EndTime:    "10:00",
		Recurrence: &recurrenceReq{Pattern: "monthly", EndDate: "2026-04-30", DayOfWeek: intPtr(2)},
	}
	_, dates, rule, _, errMsg := parseBookingReq(&req)
	require.Empty(t, errMsg)
	require.NotNil(t, rule)
	assert.Equal(t, 3, rule.WeekOfMonth)
	assert.Equal(t, time.Tuesday, rule.Weekday)
	want := []time.Time{
		ymd(2026, time.March, 17),
		ymd(2026, time.April, 21),
	}
	assert.Equal(t, want, dates)
}

func TestParseBookingReqMonthlyDerivesWeekdayFromStart(t *testing.T) {
	// 2025-03-11 is the second Tuesday.  A stated week of month without
	// a weekday must repeat on the start date's weekday, not collapse to
	// the weekday zero value (Sunday).
	req := bookingReq{
		RoomIDs:    []uint64{1},
		Date:       "2025-03-11",
		StartTime:  "09:00",
		EndTime:    "10:00",
		Recurrence: &recurrenceReq{Pattern: "monthly", EndDate: "2025-06-30", WeekOfMonth: 2},
	}
	_, dates, rule, _, errMsg := parseBookingReq(&req)
	require.Empty(t, errMsg)
	require.NotNil(t, rule)
	assert.Equal(t, 2, rule.WeekOfMonth)
	assert.Equal(t, time.Tuesday, rule.Weekday)
	want := []time.Time{
		ymd(2025, time.March, 11),
		ymd(2025, time.April, 8),
		ymd(2025, time.May, 13),
		ymd(2025, time.June, 10),
	}
	require.Equal(t, want, dates)
	for _, d := range dates {
		assert.Equal(t, time.Tuesday, d.Weekday(), "occurrence %s", d.Format("2006-01-02"))
	}
}

func TestWeekdaysCSV(t *testing.T) {
	assert.Empty(t, weekdaysCSV(nil))
	assert.Equal(t, "1", weekdaysCSV([]time.Weekday{time.Monday}))
	assert.Equal(t, "1,3,5", weekdaysCSV([]time.Weekday{time.Monday, time.Wednesday, time.Friday}))
}

func TestFindConflicts(t *testing.T) {
	rooms := map[uint64]*model.Room{
		1: {ID: 1, Name: "Aurora"},
		2: {ID: 2, Name: "Borealis"},
	}
	existing := []model.Booking{
		{RoomID: 1, BookingDate: ymd(2026, time.March, 2), StartTime: "09:00", EndTime: "10:00"},
		{RoomID: 1, BookingDate: ymd(2026, time.March, 2), StartTime: "09:30", EndTime: "11:00"},
		{RoomID: 2, BookingDate: ymd(2026, time.March, 3), StartTime: "08:00", EndTime: "09:30"},
		// Boundary touch with the requested 09:00-10:00 range.
		{RoomID: 2, BookingDate: ymd(2026, time.March, 2), StartTime: "10:00", EndTime: "11:00"},
	}

	got := findConflicts(existing, rooms, "09:00", "10:00")
	require.Len(t, got, 2, "two overlapping rows in the same room on the same date collapse to one pair")
	assert.Contains(t, got, conflictPart{RoomID: 1, RoomName: "Aurora", Date: "2026-03-02"})
	assert.Contains(t, got, conflictPart{RoomID: 2, RoomName: "Borealis", Date: "2026-03-03"})
}
