package router

import (
	"github.com/labstack/echo/v4"

	"github.com/roomly/room-booking-service/internal/handler"
	"github.com/roomly/room-booking-service/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.  All
// routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, rooms *handler.AdminRoomHandler, bookings *handler.AdminBookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	// ---- Rooms ----
	g.GET("/rooms", rooms.ListRooms)
	g.POST("/rooms", rooms.CreateRoom)
	g.PUT("/rooms/:id", rooms.UpdateRoom)
	g.PATCH("/rooms/:id", rooms.UpdateRoom) // allow partial updates via PATCH as well
	g.DELETE("/rooms/:id", rooms.DeleteRoom)

	// ---- Schedule and series ----
	g.GET("/schedule", bookings.DaySchedule)
	g.GET("/bookings/:id/series", bookings.Series)
	g.POST("/bookings/:id/extend", bookings.Extend)
	g.PATCH("/bookings/:id", bookings.UpdateBooking)
	g.DELETE("/bookings/:id", bookings.CancelBooking)

	// ---- Reports ----
	g.GET("/reports/utilization", bookings.Utilization)
}
