package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomly/room-booking-service/internal/model"
	"github.com/roomly/room-booking-service/internal/repository"
	"github.com/roomly/room-booking-service/internal/schedule"
)

func strPtr(s string) *string { return &s }

func u8Ptr(n uint8) *uint8 { return &n }

func groupRow(id, room uint64, date time.Time, status string) repository.BookingWithRoom {
	return repository.BookingWithRoom{
		Booking: model.Booking{
			ID:          id,
			RoomID:      room,
			UserID:      7,
			BookingDate: date,
			StartTime:   "09:00",
			EndTime:     "10:00",
			Status:      status,
		},
	}
}

func TestSeriesAnchorDatesIncludesCancelledTail(t *testing.T) {
	rows := []repository.BookingWithRoom{
		groupRow(1, 1, ymd(2025, time.March, 1), schedule.StatusConfirmed),
		groupRow(2, 1, ymd(2025, time.March, 2), schedule.StatusConfirmed),
		groupRow(3, 1, ymd(2025, time.March, 3), schedule.StatusConfirmed),
		groupRow(4, 1, ymd(2025, time.March, 4), schedule.StatusCancelled),
		groupRow(5, 1, ymd(2025, time.March, 5), schedule.StatusCancelled),
		// A room whose only occurrence was cancelled leaves the series.
		groupRow(6, 2, ymd(2025, time.March, 1), schedule.StatusCancelled),
	}
	dates, roomIDs := seriesAnchorDates(rows)
	assert.Len(t, dates, 6, "every member date anchors the series, cancelled included")
	assert.Equal(t, []uint64{1}, roomIDs)

	// Extending past a cancelled tail must resume after the last date the
	// series ever covered, never regenerate the cancelled occurrences.
	added := schedule.AdditionalDates(
		schedule.Series{Rule: schedule.Rule{Pattern: schedule.PatternDaily}, Dates: dates},
		ymd(2025, time.March, 7),
	)
	want := []time.Time{
		ymd(2025, time.March, 6),
		ymd(2025, time.March, 7),
	}
	require.Equal(t, want, added)
}

func TestRuleFromBookingNoRecurrence(t *testing.T) {
	_, ok := ruleFromBooking(&model.Booking{})
	assert.False(t, ok)
}

func TestRuleFromBookingWeekly(t *testing.T) {
	b := &model.Booking{
		RecurrencePattern: strPtr("weekly"),
		RecurrenceDays:    strPtr("1, 3,junk,9"),
	}
	rule, ok := ruleFromBooking(b)
	require.True(t, ok)
	assert.Equal(t, schedule.PatternWeekly, rule.Pattern)
	// Malformed and out-of-range entries are dropped, not fatal: the row
	// was validated on write and a corrupt entry must not break reads.
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, rule.Weekdays)
}

func TestRuleFromBookingMonthly(t *testing.T) {
	b := &model.Booking{
		RecurrencePattern:     strPtr("monthly"),
		RecurrenceWeekOfMonth: u8Ptr(5),
		RecurrenceDayOfWeek:   u8Ptr(4),
	}
	rule, ok := ruleFromBooking(b)
	require.True(t, ok)
	assert.Equal(t, schedule.PatternMonthly, rule.Pattern)
	assert.Equal(t, 5, rule.WeekOfMonth)
	assert.Equal(t, time.Thursday, rule.Weekday)
}
