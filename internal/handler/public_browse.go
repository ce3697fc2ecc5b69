package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roomly/room-booking-service/internal/model"
	"github.com/roomly/room-booking-service/internal/repository"
	"github.com/roomly/room-booking-service/internal/schedule"
)

// PublicHandler serves the unauthenticated browsing endpoints: the room
// catalogue and per-room day schedules.  Responses through these
// handlers are safe to cache.
type PublicHandler struct {
	Rooms    *repository.RoomRepo
	Bookings *repository.BookingRepo
}

// NewPublicHandler constructs a PublicHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewPublicHandler(rooms *repository.RoomRepo, bookings *repository.BookingRepo) *PublicHandler {
	if rooms == nil || bookings == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Rooms: rooms, Bookings: bookings}
}

// roomResp is the transport shape of a room.
type roomResp struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	Capacity        *uint32 `json:"capacity,omitempty"`
	ColorHex        string  `json:"color_hex"`
	HourlyRateCents uint32  `json:"hourly_rate_cents"`
	IsActive        bool    `json:"is_active"`
}

func toRoomResp(rm *model.Room) roomResp {
	return roomResp{
		ID:              rm.ID,
		Name:            rm.Name,
		Description:     rm.Description,
		Capacity:        rm.Capacity,
		ColorHex:        rm.ColorHex,
		HourlyRateCents: rm.HourlyRateCents,
		IsActive:        rm.IsActive,
	}
}

// ListRooms handles GET /v1/rooms.  It returns every active room
// ordered by name.
func (h *PublicHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context(), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	items := make([]roomResp, 0, len(rooms))
	for _, rm := range rooms {
		items = append(items, toRoomResp(rm))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRoom handles GET /v1/rooms/:id.  Deactivated rooms are hidden
// from the public catalogue and answer 404.
func (h *PublicHandler) GetRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	rm, err := h.Rooms.GetActiveByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toRoomResp(rm)})
}

// RoomSchedule handles GET /v1/rooms/:id/schedule?date=YYYY-MM-DD.  It
// returns the room's bookings for that date laid out as display slots,
// with side-by-side positions assigned where time ranges overlap.
func (h *PublicHandler) RoomSchedule(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	date, ok := parseDateQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required (YYYY-MM-DD)"})
	}
	ctx := c.Request().Context()
	if _, err := h.Rooms.GetActiveByID(ctx, id); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	bookings, err := h.Bookings.ListForDay(ctx, schedule.FormatDate(date), &id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedule"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":  schedule.FormatDate(date),
		"slots": buildDaySlots(bookings),
	})
}

// parseDateQuery reads the required ?date= parameter.
func parseDateQuery(c echo.Context) (t time.Time, ok bool) {
	raw := strings.TrimSpace(c.QueryParam("date"))
	if raw == "" {
		return t, false
	}
	return schedule.TryParseDate(raw)
}

// scheduleSlot is one display slot on a day schedule.  A multi-room
// booking collapses into a single slot listing every room it spans.
// OverlapCount is zero for slots that do not collide with anything.
type scheduleSlot struct {
	BookingID    uint64   `json:"booking_id"`
	GroupID      *string  `json:"group_id,omitempty"`
	UserID       uint64   `json:"user_id"`
	RoomID       uint64   `json:"room_id,omitempty"`
	RoomIDs      []uint64 `json:"room_ids,omitempty"`
	RoomNames    []string `json:"room_names"`
	RoomColor    string   `json:"room_color,omitempty"`
	StartTime    string   `json:"start_time"`
	EndTime      string   `json:"end_time"`
	MultiRoom    bool     `json:"multi_room"`
	OverlapIndex int      `json:"overlap_index"`
	OverlapCount int      `json:"overlap_count"`
}

// buildDaySlots runs the overlap layout over one day's bookings and
// joins the room display fields back onto the resulting slots.
func buildDaySlots(rows []repository.BookingWithRoom) []scheduleSlot {
	day := make([]schedule.Booking, 0, len(rows))
	roomNames := make(map[uint64]string, len(rows))
	roomColors := make(map[uint64]string, len(rows))
	for _, bw := range rows {
		roomNames[bw.RoomID] = bw.RoomName
		roomColors[bw.RoomID] = bw.RoomColor
		gid := ""
		if bw.BookingGroupID != nil {
			gid = *bw.BookingGroupID
		}
		day = append(day, schedule.Booking{
			ID:        bw.ID,
			GroupID:   gid,
			RoomID:    bw.RoomID,
			RoomName:  bw.RoomName,
			UserID:    bw.UserID,
			Date:      bw.BookingDate,
			StartTime: bw.StartTime,
			EndTime:   bw.EndTime,
			Status:    bw.Status,
			ParentID:  bw.ParentBookingID,
		})
	}
	slots := schedule.Layout(day)
	out := make([]scheduleSlot, 0, len(slots))
	for _, s := range slots {
		view := scheduleSlot{
			BookingID:    s.BookingID,
			UserID:       s.UserID,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			MultiRoom:    s.MultiRoom,
			OverlapIndex: s.OverlapIndex,
			OverlapCount: s.OverlapCount,
		}
		if s.GroupID != "" {
			gid := s.GroupID
			view.GroupID = &gid
		}
		if s.MultiRoom {
			view.RoomIDs = s.RoomIDs
			for _, rid := range s.RoomIDs {
				view.RoomNames = append(view.RoomNames, roomNames[rid])
			}
		} else {
			view.RoomID = s.RoomID
			view.RoomNames = []string{roomNames[s.RoomID]}
			view.RoomColor = roomColors[s.RoomID]
		}
		out = append(out, view)
	}
	return out
}
