package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roomly/room-booking-service/internal/model"
)

// RoomRepo provides methods to create and retrieve bookable rooms.  It
// embeds a database handle to perform queries and commands.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, name, description, capacity, color_hex, hourly_rate_cents, is_active, created_at, updated_at`

// scanRoom reads a single room row into a model.Room, converting the
// nullable columns into pointer fields.
func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var (
		rm       model.Room
		desc     sql.NullString
		capacity sql.NullInt32
	)
	err := row.Scan(&rm.ID, &rm.Name, &desc, &capacity, &rm.ColorHex, &rm.HourlyRateCents, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		d := desc.String
		rm.Description = &d
	}
	if capacity.Valid {
		c := uint32(capacity.Int32)
		rm.Capacity = &c
	}
	return &rm, nil
}

// Create inserts a new room.  Name and ColorHex must be set; Description
// and Capacity may be nil.  After insert the record is read back so the
// ID, timestamps and defaults are populated on the provided struct.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const qInsert = `INSERT INTO rooms (name, description, capacity, color_hex, hourly_rate_cents)
	                 VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, rm.Name, rm.Description, rm.Capacity, rm.ColorHex, rm.HourlyRateCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	got, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rm = *got
	return nil
}

// GetByID retrieves a room by its ID.  It returns ErrRoomNotFound when
// no row is found.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// GetActiveByID retrieves a room that is currently accepting bookings.
// Deactivated rooms behave as if they do not exist for customers.
func (r *RoomRepo) GetActiveByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ? AND is_active = 1`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// List returns rooms ordered by name.  When activeOnly is true only
// rooms open for booking are included; admins pass false to see the
// full inventory including deactivated rooms.
func (r *RoomRepo) List(ctx context.Context, activeOnly bool) ([]*model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update modifies a room's editable fields.  Returns ErrRoomNotFound
// when the room does not exist.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	const q = `UPDATE rooms
	           SET name = ?, description = ?, capacity = ?, color_hex = ?, hourly_rate_cents = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		rm.Name, rm.Description, rm.Capacity, rm.ColorHex, rm.HourlyRateCents, rm.IsActive, rm.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Deactivate soft-deletes a room by clearing its is_active flag.
// Existing bookings are left untouched; the room simply stops being
// offered for new bookings.
func (r *RoomRepo) Deactivate(ctx context.Context, id uint64) error {
	const q = `UPDATE rooms SET is_active = 0, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
