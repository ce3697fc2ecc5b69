// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingCreatedEvent is published when a booking (or a whole booking
// group) is successfully created.  It contains enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database.
type BookingCreatedEvent struct {
	BookingIDs  []uint64 `json:"booking_ids"`
	GroupID     string   `json:"group_id,omitempty"`
	UserID      uint64   `json:"user_id"`
	RoomNames   []string `json:"rooms"`
	Dates       []string `json:"dates"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	Recurrence  string   `json:"recurrence,omitempty"`
	CreatedAt   string   `json:"created_at"`
}
