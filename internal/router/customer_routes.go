package router

import (
	"github.com/labstack/echo/v4"

	"github.com/roomly/room-booking-service/internal/handler"
	"github.com/roomly/room-booking-service/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All
// routes require a valid JWT and the CUSTOMER role.  Customers can
// preview and create bookings (standalone, recurring or multi-room),
// list and inspect their own bookings and cancel a booking or a whole
// series.
func RegisterCustomer(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/bookings/preview", h.Preview)
	g.POST("/bookings", h.Create)
	g.GET("/my-bookings", h.ListMyBookings)
	g.GET("/bookings/:id", h.GetBooking)
	// Cancellation is always soft; ?scope=series cancels every live
	// member of the booking's group.
	g.DELETE("/bookings/:id", h.CancelBooking)
}
