package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roomly/room-booking-service/internal/model"
	"github.com/roomly/room-booking-service/internal/repository"
)

// AdminRoomHandler serves the room management endpoints.  Role
// middleware guarantees every caller is an ADMIN.
type AdminRoomHandler struct {
	Rooms *repository.RoomRepo
}

func NewAdminRoomHandler(rooms *repository.RoomRepo) *AdminRoomHandler {
	if rooms == nil {
		panic("nil repository passed to NewAdminRoomHandler")
	}
	return &AdminRoomHandler{Rooms: rooms}
}

type roomReq struct {
	Name            string  `json:"name"`
	Description     *string `json:"description,omitempty"`
	Capacity        *uint32 `json:"capacity,omitempty"`
	ColorHex        string  `json:"color_hex"`
	HourlyRateCents uint32  `json:"hourly_rate_cents"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

// validColorHex accepts #RGB or #RRGGBB.
func validColorHex(s string) bool {
	if len(s) != 4 && len(s) != 7 {
		return false
	}
	if s[0] != '#' {
		return false
	}
	for _, ch := range s[1:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return false
		}
	}
	return true
}

// ListRooms handles GET /v1/admin/rooms.  Unlike the public catalogue
// it includes deactivated rooms.
func (h *AdminRoomHandler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.List(c.Request().Context(), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
	}
	items := make([]roomResp, 0, len(rooms))
	for _, rm := range rooms {
		items = append(items, toRoomResp(rm))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CreateRoom handles POST /v1/admin/rooms.
func (h *AdminRoomHandler) CreateRoom(c echo.Context) error {
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !validColorHex(req.ColorHex) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "color_hex must be a #RGB or #RRGGBB value"})
	}
	rm := &model.Room{
		Name:            req.Name,
		Description:     req.Description,
		Capacity:        req.Capacity,
		ColorHex:        req.ColorHex,
		HourlyRateCents: req.HourlyRateCents,
	}
	if err := h.Rooms.Create(c.Request().Context(), rm); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": toRoomResp(rm)})
}

// UpdateRoom handles PUT/PATCH /v1/admin/rooms/:id.  Absent fields keep
// their stored values.
func (h *AdminRoomHandler) UpdateRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	ctx := c.Request().Context()
	rm, err := h.Rooms.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load room"})
	}
	var req roomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		rm.Name = name
	}
	if req.Description != nil {
		rm.Description = req.Description
	}
	if req.Capacity != nil {
		rm.Capacity = req.Capacity
	}
	if req.ColorHex != "" {
		if !validColorHex(req.ColorHex) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "color_hex must be a #RGB or #RRGGBB value"})
		}
		rm.ColorHex = req.ColorHex
	}
	if req.HourlyRateCents != 0 {
		rm.HourlyRateCents = req.HourlyRateCents
	}
	if req.IsActive != nil {
		rm.IsActive = *req.IsActive
	}
	if err := h.Rooms.Update(ctx, rm); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "room name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update room"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": toRoomResp(rm)})
}

// DeleteRoom handles DELETE /v1/admin/rooms/:id.  Rooms are never hard
// deleted; the room is deactivated and its bookings remain.
func (h *AdminRoomHandler) DeleteRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
	}
	if err := h.Rooms.Deactivate(c.Request().Context(), id); err != nil {
		if err == repository.ErrRoomNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to deactivate room"})
	}
	return c.NoContent(http.StatusNoContent)
}
