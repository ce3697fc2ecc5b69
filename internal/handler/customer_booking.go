package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/roomly/room-booking-service/internal/model"
	"github.com/roomly/room-booking-service/internal/queue"
	"github.com/roomly/room-booking-service/internal/repository"
	"github.com/roomly/room-booking-service/internal/schedule"
	queue_publisher "github.com/roomly/room-booking-service/internal/service"
)

// maxOccurrences bounds how many dated occurrences a single booking
// request may expand into.  A daily series over a full year stays
// within the limit.
const maxOccurrences = 366

// BookingHandler serves the customer-facing booking endpoints.  All
// methods assume that JWT authentication and role validation has
// already been performed by middleware.  Creation and cancellation run
// their DB operations inside a transaction to guarantee that a booking
// group is written or cancelled atomically.
type BookingHandler struct {
	Rooms    *repository.RoomRepo
	Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewBookingHandler(rooms *repository.RoomRepo, bookings *repository.BookingRepo) *BookingHandler {
	if rooms == nil || bookings == nil {
		panic("nil repository passed to NewBookingHandler")
	}
	return &BookingHandler{Rooms: rooms, Bookings: bookings}
}

// ----- DTOs -----

type recurrenceReq struct {
	Pattern     string `json:"pattern"`                 // daily | weekly | monthly
	EndDate     string `json:"end_date"`                // inclusive YYYY-MM-DD bound
	Days        []int  `json:"days,omitempty"`          // weekly: weekday indices 0=Sunday..6=Saturday
	WeekOfMonth int    `json:"week_of_month,omitempty"` // monthly: 1..5, 5 = last
	DayOfWeek   *int   `json:"day_of_week,omitempty"`   // monthly: weekday index
}

type bookingReq struct {
	RoomIDs    []uint64       `json:"room_ids"`
	Date       string         `json:"date"`
	StartTime  string         `json:"start_time"`
	EndTime    string         `json:"end_time"`
	Notes      *string        `json:"notes,omitempty"`
	Recurrence *recurrenceReq `json:"recurrence,omitempty"`
}

type conflictPart struct {
	RoomID   uint64 `json:"room_id"`
	RoomName string `json:"room_name"`
	Date     string `json:"date"`
}

// parseBookingReq validates a booking request and resolves it into the
// engine's terms: the start date, the expanded occurrence dates and the
// deduplicated room IDs.  The returned rule is nil for standalone
// bookings.  A non-empty errMsg describes the first validation failure.
func parseBookingReq(req *bookingReq) (start time.Time, dates []time.Time, rule *schedule.Rule, roomIDs []uint64, errMsg string) {
	seen := make(map[uint64]struct{})
	for _, id := range req.RoomIDs {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			roomIDs = append(roomIDs, id)
		}
	}
	if len(roomIDs) == 0 {
		return start, nil, nil, nil, "room_ids is required"
	}
	start, ok := schedule.TryParseDate(req.Date)
	if !ok {
		return start, nil, nil, nil, "date must be a valid YYYY-MM-DD value"
	}
	if !schedule.ValidTimeRange(req.StartTime, req.EndTime) {
		return start, nil, nil, nil, "start_time must be before end_time, both HH:MM"
	}
	if req.Recurrence == nil {
		return start, []time.Time{start}, nil, roomIDs, ""
	}

	rec := req.Recurrence
	pattern := schedule.Pattern(strings.ToLower(strings.TrimSpace(rec.Pattern)))
	if pattern != schedule.PatternDaily && pattern != schedule.PatternWeekly && pattern != schedule.PatternMonthly {
		return start, nil, nil, nil, "recurrence.pattern must be daily, weekly or monthly"
	}
	until, ok := schedule.TryParseDate(rec.EndDate)
	if !ok {
		return start, nil, nil, nil, "recurrence.end_date must be a valid YYYY-MM-DD value"
	}
	if !until.After(start) {
		return start, nil, nil, nil, "recurrence.end_date must be after date"
	}
	r := schedule.Rule{Pattern: pattern}
	if pattern == schedule.PatternWeekly {
		for _, d := range rec.Days {
			if d < 0 || d > 6 {
				return start, nil, nil, nil, "recurrence.days entries must be 0 (Sunday) through 6 (Saturday)"
			}
			r.Weekdays = append(r.Weekdays, time.Weekday(d))
		}
	}
	if pattern == schedule.PatternMonthly {
		if rec.WeekOfMonth != 0 {
			if rec.WeekOfMonth < 1 || rec.WeekOfMonth > 5 {
				return start, nil, nil, nil, "recurrence.week_of_month must be 1 through 5"
			}
			r.WeekOfMonth = rec.WeekOfMonth
		}
		if rec.DayOfWeek != nil {
			if *rec.DayOfWeek < 0 || *rec.DayOfWeek > 6 {
				return start, nil, nil, nil, "recurrence.day_of_week must be 0 (Sunday) through 6 (Saturday)"
			}
			r.Weekday = time.Weekday(*rec.DayOfWeek)
		} else {
			// An omitted weekday repeats on the start date's weekday.
			// Resolving it here, rather than relying on the expander's
			// anchor defaulting, keeps the rule self-contained for
			// persistence.
			r.Weekday = start.Weekday()
		}
		if r.WeekOfMonth == 0 {
			// An omitted week anchors on the start date's week.
			r.WeekOfMonth = (start.Day()-1)/7 + 1
		}
	}
	dates = schedule.Expand(start, r, until)
	return start, dates, &r, roomIDs, ""
}

// loadActiveRooms fetches every requested room and rejects unknown or
// deactivated ones.
func (h *BookingHandler) loadActiveRooms(ctx context.Context, roomIDs []uint64) (map[uint64]*model.Room, string) {
	rooms := make(map[uint64]*model.Room, len(roomIDs))
	for _, id := range roomIDs {
		rm, err := h.Rooms.GetActiveByID(ctx, id)
		if err != nil {
			if err == repository.ErrRoomNotFound {
				return nil, "room not found or not bookable"
			}
			return nil, "failed to load rooms"
		}
		rooms[id] = rm
	}
	return rooms, ""
}

// Preview handles POST /v1/bookings/preview.  It expands the request
// through the recurrence engine without persisting anything, so clients
// can show "this will create N bookings" before committing.
func (h *BookingHandler) Preview(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	_, dates, _, roomIDs, errMsg := parseBookingReq(&req)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}
	if len(dates) > maxOccurrences {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recurrence expands to too many occurrences"})
	}
	rooms, loadErr := h.loadActiveRooms(c.Request().Context(), roomIDs)
	if loadErr != "" {
		code := http.StatusNotFound
		if loadErr == "failed to load rooms" {
			code = http.StatusInternalServerError
		}
		return c.JSON(code, echo.Map{"error": loadErr})
	}

	startMin, _ := schedule.MinuteOfDay(req.StartTime)
	endMin, _ := schedule.MinuteOfDay(req.EndTime)
	minutes := uint64(endMin - startMin)
	var costCents uint64
	for _, rm := range rooms {
		costCents += uint64(rm.HourlyRateCents) * minutes / 60
	}
	costCents *= uint64(len(dates))

	dateStrs := make([]string, 0, len(dates))
	for _, d := range dates {
		dateStrs = append(dateStrs, schedule.FormatDate(d))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"dates":                dateStrs,
		"occurrences":          len(dates),
		"rooms":                len(roomIDs),
		"total_bookings":       len(dates) * len(roomIDs),
		"estimated_cost_cents": costCents,
	})
}

// Create handles POST /v1/bookings.  It expands the request into dated
// occurrences, conflict-checks every room/date pair against live
// bookings and inserts all rows atomically.  When any occurrence
// overlaps an existing booking the whole request is rejected with 409
// and the list of conflicting room/date pairs; nothing is persisted.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	_, dates, rule, roomIDs, errMsg := parseBookingReq(&req)
	if errMsg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": errMsg})
	}
	if len(dates) > maxOccurrences {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "recurrence expands to too many occurrences"})
	}
	ctx := c.Request().Context()
	rooms, loadErr := h.loadActiveRooms(ctx, roomIDs)
	if loadErr != "" {
		code := http.StatusNotFound
		if loadErr == "failed to load rooms" {
			code = http.StatusInternalServerError
		}
		return c.JSON(code, echo.Map{"error": loadErr})
	}

	dateStrs := make([]string, 0, len(dates))
	for _, d := range dates {
		dateStrs = append(dateStrs, schedule.FormatDate(d))
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	existing, err := h.Bookings.ListLiveForRoomsOnDatesTx(ctx, tx, roomIDs, dateStrs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	conflicts := findConflicts(existing, rooms, req.StartTime, req.EndTime)
	if len(conflicts) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "requested time overlaps existing bookings",
			"conflicts": conflicts,
		})
	}

	var groupID *string
	if len(dates)*len(roomIDs) > 1 {
		gid := uuid.NewString()
		groupID = &gid
	}
	rows := make([]*model.Booking, 0, len(dates)*len(roomIDs))
	for di, d := range dates {
		for ri, roomID := range roomIDs {
			b := &model.Booking{
				RoomID:         roomID,
				UserID:         userID,
				BookingDate:    d,
				StartTime:      req.StartTime,
				EndTime:        req.EndTime,
				Status:         schedule.StatusConfirmed,
				Notes:          req.Notes,
				BookingGroupID: groupID,
			}
			// The first row becomes the parent and carries the
			// recurrence definition.
			if di == 0 && ri == 0 && rule != nil {
				p := string(rule.Pattern)
				b.RecurrencePattern = &p
				end := dates[len(dates)-1]
				if until, ok := schedule.TryParseDate(req.Recurrence.EndDate); ok {
					end = until
				}
				b.RecurrenceEndDate = &end
				if csv := weekdaysCSV(rule.Weekdays); csv != "" {
					b.RecurrenceDays = &csv
				}
				if rule.WeekOfMonth != 0 {
					w := uint8(rule.WeekOfMonth)
					b.RecurrenceWeekOfMonth = &w
				}
				if rule.Pattern == schedule.PatternMonthly {
					dow := uint8(rule.Weekday)
					b.RecurrenceDayOfWeek = &dow
				}
			}
			rows = append(rows, b)
		}
	}
	if err := h.Bookings.CreateSeriesTx(ctx, tx, rows); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create bookings"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	ids := make([]uint64, 0, len(rows))
	for _, b := range rows {
		ids = append(ids, b.ID)
	}
	roomNames := make([]string, 0, len(roomIDs))
	for _, id := range roomIDs {
		roomNames = append(roomNames, rooms[id].Name)
	}
	ev := queue.BookingCreatedEvent{
		BookingIDs: ids,
		UserID:     userID,
		RoomNames:  roomNames,
		Dates:      dateStrs,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if groupID != nil {
		ev.GroupID = *groupID
	}
	if rule != nil {
		ev.Recurrence = string(rule.Pattern)
	}
	// Fire and forget; a broker outage must not fail the booking.
	go func() { _ = queue_publisher.PublishBookingCreated(context.Background(), ev) }()

	resp := echo.Map{
		"booking_ids": ids,
		"count":       len(ids),
		"dates":       dateStrs,
	}
	if groupID != nil {
		resp["booking_group_id"] = *groupID
	}
	return c.JSON(http.StatusCreated, resp)
}

// findConflicts returns the room/date pairs where the requested time
// range overlaps a live booking.  Boundary touches are not conflicts.
func findConflicts(existing []model.Booking, rooms map[uint64]*model.Room, start, end string) []conflictPart {
	out := make([]conflictPart, 0)
	seen := make(map[conflictPart]struct{})
	for _, b := range existing {
		if !schedule.Overlaps(start, end, b.StartTime, b.EndTime) {
			continue
		}
		cp := conflictPart{RoomID: b.RoomID, Date: schedule.FormatDate(b.BookingDate)}
		if rm, ok := rooms[b.RoomID]; ok {
			cp.RoomName = rm.Name
		}
		if _, dup := seen[cp]; dup {
			continue
		}
		seen[cp] = struct{}{}
		out = append(out, cp)
	}
	return out
}

// weekdaysCSV renders a weekday set as the CSV form stored on the
// parent booking row.
func weekdaysCSV(days []time.Weekday) string {
	if len(days) == 0 {
		return ""
	}
	parts := make([]string, 0, len(days))
	for _, d := range days {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}

// ListMyBookings handles GET /v1/my-bookings.  It returns all bookings
// created by the current user, cancelled ones included, newest first.
func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// GetBooking handles GET /v1/bookings/:id.  It returns one booking
// belonging to the current user; other users' bookings answer 403.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	rm, err := h.Rooms.GetByID(ctx, b.RoomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": bookingItem(b, rm)})
}

// CancelBooking handles DELETE /v1/bookings/:id[?scope=series].  It
// soft-cancels one booking, or with scope=series every live member of
// its group.  Cancelled rows stay in place as history.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	tx, err := h.Bookings.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	scope := strings.ToLower(strings.TrimSpace(c.QueryParam("scope")))
	var cancelled int64
	if scope == "series" && b.BookingGroupID != nil {
		cancelled, err = h.Bookings.CancelGroupTx(ctx, tx, *b.BookingGroupID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel series"})
		}
	} else {
		if err := h.Bookings.CancelTx(ctx, tx, id); err != nil {
			if err == repository.ErrBookingNotFound {
				return c.JSON(http.StatusConflict, echo.Map{"error": "booking already cancelled"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to cancel booking"})
		}
		cancelled = 1
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"cancelled": cancelled})
}

// bookingItem renders a single booking with its room display fields and
// any recurrence definition it carries.
func bookingItem(b *model.Booking, rm *model.Room) echo.Map {
	item := echo.Map{
		"id":           b.ID,
		"room_id":      b.RoomID,
		"room_name":    rm.Name,
		"room_color":   rm.ColorHex,
		"booking_date": schedule.FormatDate(b.BookingDate),
		"start_time":   b.StartTime,
		"end_time":     b.EndTime,
		"status":       b.Status,
	}
	if b.Notes != nil {
		item["notes"] = *b.Notes
	}
	if b.BookingGroupID != nil {
		item["booking_group_id"] = *b.BookingGroupID
	}
	if b.ParentBookingID != nil {
		item["parent_booking_id"] = *b.ParentBookingID
	}
	if b.RecurrencePattern != nil {
		rec := echo.Map{"pattern": *b.RecurrencePattern}
		if b.RecurrenceEndDate != nil {
			rec["end_date"] = schedule.FormatDate(*b.RecurrenceEndDate)
		}
		if b.RecurrenceDays != nil {
			rec["days"] = *b.RecurrenceDays
		}
		if b.RecurrenceWeekOfMonth != nil {
			rec["week_of_month"] = *b.RecurrenceWeekOfMonth
		}
		if b.RecurrenceDayOfWeek != nil {
			rec["day_of_week"] = *b.RecurrenceDayOfWeek
		}
		item["recurrence"] = rec
	}
	return item
}
