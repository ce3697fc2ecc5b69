package model

import "time"

// Booking records one room occupied on one calendar date for a time
// range.  A booking is created either standalone or as part of a group:
// every row produced by a single user action (one recurring series, one
// multi-room reservation, or both combined) shares a BookingGroupID.
// Exactly one member of a group, the parent, carries the recurrence
// definition; children carry only their own date and times.  This struct
// corresponds to a row in the `bookings` table.
//
// Fields:
//  ID                    – primary key identifier.
//  RoomID                – room the booking occupies.
//  UserID                – user who owns the booking.
//  BookingDate           – calendar date of the occurrence (no time part).
//  StartTime, EndTime    – 24-hour "HH:MM" values, start < end same day.
//  Status                – PENDING, CONFIRMED or CANCELLED.  Cancelled
//                          rows are kept for history, never deleted.
//  Notes                 – optional free text shown on the booking.
//  BookingGroupID        – shared group identifier (nil when standalone).
//  ParentBookingID       – reference to the group's parent (nil on the
//                          parent itself).
//  RecurrencePattern     – daily, weekly or monthly; parent only.
//  RecurrenceEndDate     – inclusive series bound; parent only and
//                          strictly after the parent's own date.
//  RecurrenceDays        – weekday indices 0=Sunday..6=Saturday stored
//                          as CSV, weekly pattern only; empty means
//                          "repeat on the start date's weekday".
//  RecurrenceWeekOfMonth – 1..5 (5 = last), monthly pattern only.
//  RecurrenceDayOfWeek   – weekday index, monthly pattern only.
//  CreatedAt             – creation timestamp.
//  UpdatedAt             – last update timestamp.
type Booking struct {
	ID                    uint64     // bookings.id
	RoomID                uint64     // bookings.room_id
	UserID                uint64     // bookings.user_id
	BookingDate           time.Time  // bookings.booking_date (DATE)
	StartTime             string     // bookings.start_time ("HH:MM")
	EndTime               string     // bookings.end_time ("HH:MM")
	Status                string     // bookings.status
	Notes                 *string    // bookings.notes (nullable)
	BookingGroupID        *string    // bookings.booking_group_id (nullable)
	ParentBookingID       *uint64    // bookings.parent_booking_id (nullable)
	RecurrencePattern     *string    // bookings.recurrence_pattern (nullable)
	RecurrenceEndDate     *time.Time // bookings.recurrence_end_date (nullable DATE)
	RecurrenceDays        *string    // bookings.recurrence_days (nullable CSV)
	RecurrenceWeekOfMonth *uint8     // bookings.recurrence_week_of_month (nullable)
	RecurrenceDayOfWeek   *uint8     // bookings.recurrence_day_of_week (nullable)
	CreatedAt             time.Time  // bookings.created_at
	UpdatedAt             time.Time  // bookings.updated_at
}
