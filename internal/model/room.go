package model

import "time"

// Room represents a bookable room in the centre.  Rooms are booked
// whole; there is no per-seat inventory.  The colour is used by the
// calendar grid to paint a room's bookings consistently.  This struct
// corresponds to a row in the `rooms` table.
//
// Fields:
//  ID              – primary key identifier.
//  Name            – unique room name.
//  Description     – optional free-text description.
//  Capacity        – maximum number of occupants (nil if unspecified).
//  ColorHex        – display colour, e.g. "#4F86C6".
//  HourlyRateCents – advertised hourly rate in cents.
//  IsActive        – whether the room can currently be booked.
//  CreatedAt       – timestamp when the room was created.
//  UpdatedAt       – timestamp of last update.
type Room struct {
	ID              uint64     // rooms.id
	Name            string     // rooms.name
	Description     *string    // rooms.description (nullable)
	Capacity        *uint32    // rooms.capacity (nullable)
	ColorHex        string     // rooms.color_hex
	HourlyRateCents uint32     // rooms.hourly_rate_cents
	IsActive        bool       // rooms.is_active
	CreatedAt       time.Time  // rooms.created_at
	UpdatedAt       time.Time  // rooms.updated_at
}
