package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roomly/room-booking-service/internal/model"
	"github.com/roomly/room-booking-service/internal/repository"
	"github.com/roomly/room-booking-service/internal/schedule"
)

// AdminBookingHandler serves the admin scheduling endpoints: the
// cross-room day schedule, series inspection and mutation, and the
// utilization report.  Role middleware guarantees every caller is an
// ADMIN.
type AdminBookingHandler struct {
	Rooms    *repository.RoomRepo
	Bookings *repository.BookingRepo
}

func NewAdminBookingHandler(rooms *repository.RoomRepo, bookings *repository.BookingRepo) *AdminBookingHandler {
	if rooms == nil || bookings == nil {
		panic("nil repository passed to NewAdminBookingHandler")
	}
	return &AdminBookingHandler{Rooms: rooms, Bookings: bookings}
}

// DaySchedule handles GET /v1/admin/schedule?date=[&room_id=].  It
// returns the overlap-annotated layout for one date across all rooms,
// or one room when room_id is given, together with the room color map
// used by the calendar grid.
func (h *AdminBookingHandler) DaySchedule(c echo.Context) error {
	date, ok := parseDateQuery(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query parameter is required (YYYY-MM-DD)"})
	}
	var roomID *uint64
	if raw := strings.TrimSpace(c.QueryParam("room_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room_id"})
		}
		roomID = &id
	}
	ctx := c.Request().Context()
	bookings, err := h.Bookings.ListForDay(ctx, schedule.FormatDate(date), roomID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load schedule"})
	}
	colors := make(map[uint64]string)
	for _, bw := range bookings {
		colors[bw.RoomID] = bw.RoomColor
	}
	return c.JSON(http.StatusOK, echo.Map{
		"date":        schedule.FormatDate(date),
		"slots":       buildDaySlots(bookings),
		"room_colors": colors,
	})
}

// groupToSchedule converts group rows into the engine's booking shape.
func groupToSchedule(rows []repository.BookingWithRoom) []schedule.Booking {
	out := make([]schedule.Booking, 0, len(rows))
	for _, bw := range rows {
		gid := ""
		if bw.BookingGroupID != nil {
			gid = *bw.BookingGroupID
		}
		out = append(out, schedule.Booking{
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
	return out
}

// memberItem renders one group member for the series response.
func memberItem(b schedule.Booking) echo.Map {
	return echo.Map{
		"id":         b.ID,
		"room_id":    b.RoomID,
		"room_name":  b.RoomName,
		"date":       schedule.FormatDate(b.Date),
		"start_time": b.StartTime,
		"end_time":   b.EndTime,
		"status":     b.Status,
	}
}

// Series handles GET /v1/admin/bookings/:id/series.  It classifies the
// booking's group and returns the series summary.  Bookings that are
// standalone, or whose group has fewer than two live members, answer
// 404.
func (h *AdminBookingHandler) Series(c echo.Context) error {
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
	if b.BookingGroupID == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking is not part of a series"})
	}
	rows, err := h.Bookings.ListByGroup(ctx, *b.BookingGroupID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load series"})
	}
	info := schedule.Classify(groupToSchedule(rows), *b.BookingGroupID)
	if info == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking is not part of a series"})
	}
	dates := make([]string, 0, len(info.Dates))
	for _, d := range info.Dates {
		dates = append(dates, schedule.FormatDate(d))
	}
	members := make([]echo.Map, 0, len(info.Members))
	for _, m := range info.Members {
		members = append(members, memberItem(m))
	}
	cancelled := make([]echo.Map, 0, len(info.Cancelled))
	for _, m := range info.Cancelled {
		cancelled = append(cancelled, memberItem(m))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"group_id":      info.GroupID,
		"count":         info.Count,
		"rooms":         info.Rooms,
		"dates":         dates,
		"is_multi_room": info.IsMultiRoom,
		"is_recurring":  info.IsRecurring,
		"parent":        memberItem(info.Parent),
		"members":       members,
		"cancelled":     cancelled,
	})
}

// ruleFromBooking reconstructs the recurrence rule stored on a parent
// booking row.  It reports false when the row carries no recurrence.
func ruleFromBooking(b *model.Booking) (schedule.Rule, bool) {
	if b.RecurrencePattern == nil {
		return schedule.Rule{}, false
	}
	r := schedule.Rule{Pattern: schedule.Pattern(*b.RecurrencePattern)}
	if b.RecurrenceDays != nil {
		for _, part := range strings.Split(*b.RecurrenceDays, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 0 || n > 6 {
				continue
			}
			r.Weekdays = append(r.Weekdays, time.Weekday(n))
		}
	}
	if b.RecurrenceWeekOfMonth != nil {
		r.WeekOfMonth = int(*b.RecurrenceWeekOfMonth)
	}
	if b.RecurrenceDayOfWeek != nil {
		r.Weekday = time.Weekday(*b.RecurrenceDayOfWeek)
	}
	return r, true
}

// seriesAnchorDates collects the dates already held by a group's
// members and the rooms the series still spans.  Every member's date
// counts, cancelled ones included: the extension walk anchors on the
// greatest date the series has ever covered, so cancelling the tail of
// a series must not cause those dates to be regenerated.  Rooms come
// from live members only; a room whose every occurrence was cancelled
// gains no new ones.
func seriesAnchorDates(rows []repository.BookingWithRoom) (dates []time.Time, roomIDs []uint64) {
	dates = make([]time.Time, 0, len(rows))
	roomSet := make(map[uint64]struct{})
	for _, bw := range rows {
		dates = append(dates, bw.BookingDate)
		if bw.Status == schedule.StatusCancelled {
			continue
		}
		if _, ok := roomSet[bw.RoomID]; !ok {
			roomSet[bw.RoomID] = struct{}{}
			roomIDs = append(roomIDs, bw.RoomID)
		}
	}
	return dates, roomIDs
}

type extendReq struct {
	NewEndDate string `json:"new_end_date"`
	Preview    bool   `json:"preview"`
}

// Extend handles POST /v1/admin/bookings/:id/extend.  It computes the
// additional occurrence dates the series would gain up to new_end_date.
// With preview=true nothing is persisted; otherwise the new occurrences
// are appended in one transaction for every room the series spans and
// the parent's recurrence_end_date is advanced.
func (h *AdminBookingHandler) Extend(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req extendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	newEnd, ok := schedule.TryParseDate(req.NewEndDate)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_end_date must be a valid YYYY-MM-DD value"})
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
	}
	if b.BookingGroupID == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not part of a recurring series"})
	}
	rows, err := h.Bookings.ListByGroup(ctx, *b.BookingGroupID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load series"})
	}

	// Locate the parent row; it is the one carrying the recurrence
	// definition.
	var parent *model.Booking
	for i := range rows {
		if rows[i].RecurrencePattern != nil {
			parent = &rows[i].Booking
			break
		}
	}
	if parent == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not part of a recurring series"})
	}
	rule, _ := ruleFromBooking(parent)

	memberDates, roomIDs := seriesAnchorDates(rows)

	added := schedule.AdditionalDates(schedule.Series{Rule: rule, Dates: memberDates}, newEnd)
	if len(added) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new_end_date does not extend the series"})
	}
	if len(added) > maxOccurrences {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "extension expands to too many occurrences"})
	}
	addedStrs := make([]string, 0, len(added))
	for _, d := range added {
		addedStrs = append(addedStrs, schedule.FormatDate(d))
	}
	if req.Preview {
		return c.JSON(http.StatusOK, echo.Map{
			"added_dates": addedStrs,
			"added_count": len(added),
			"preview":     true,
		})
	}

	rooms := make(map[uint64]*model.Room, len(roomIDs))
	for _, rid := range roomIDs {
		rm, err := h.Rooms.GetByID(ctx, rid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
		}
		rooms[rid] = rm
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

	existing, err := h.Bookings.ListLiveForRoomsOnDatesTx(ctx, tx, roomIDs, addedStrs)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check availability"})
	}
	conflicts := findConflicts(existing, rooms, parent.StartTime, parent.EndTime)
	if len(conflicts) > 0 {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "extension overlaps existing bookings",
			"conflicts": conflicts,
		})
	}

	newRows := make([]*model.Booking, 0, len(added)*len(roomIDs))
	for _, d := range added {
		for _, rid := range roomIDs {
			newRows = append(newRows, &model.Booking{
				RoomID:         rid,
				UserID:         parent.UserID,
				BookingDate:    d,
				StartTime:      parent.StartTime,
				EndTime:        parent.EndTime,
				Status:         schedule.StatusConfirmed,
				Notes:          parent.Notes,
				BookingGroupID: parent.BookingGroupID,
			})
		}
	}
	if err := h.Bookings.AppendOccurrencesTx(ctx, tx, parent.ID, newRows); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to append occurrences"})
	}
	if err := h.Bookings.UpdateRecurrenceEndTx(ctx, tx, parent.ID, newEnd); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update series bound"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	ids := make([]uint64, 0, len(newRows))
	for _, nb := range newRows {
		ids = append(ids, nb.ID)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"added_dates":         addedStrs,
		"added_count":         len(added),
		"booking_ids":         ids,
		"recurrence_end_date": schedule.FormatDate(newEnd),
	})
}

type adminPatchReq struct {
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	Status        *string `json:"status,omitempty"`
	ApplyToSeries bool    `json:"apply_to_series,omitempty"`
}

// UpdateBooking handles PATCH /v1/admin/bookings/:id.  Absent fields
// keep their stored values; apply_to_series=true propagates the change
// to every live member of the booking's group.
func (h *AdminBookingHandler) UpdateBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req adminPatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time and end_time must be supplied together"})
	}
	if req.StartTime != nil && !schedule.ValidTimeRange(*req.StartTime, *req.EndTime) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start_time must be before end_time, both HH:MM"})
	}
	if req.Status != nil {
		s := strings.ToUpper(strings.TrimSpace(*req.Status))
		if s != schedule.StatusPending && s != schedule.StatusConfirmed && s != schedule.StatusCancelled {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "status must be PENDING, CONFIRMED or CANCELLED"})
		}
		req.Status = &s
	}
	if req.StartTime == nil && req.Notes == nil && req.Status == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch booking"})
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

	var updated int64 = 1
	if req.ApplyToSeries && b.BookingGroupID != nil {
		updated, err = h.Bookings.UpdateGroupFieldsTx(ctx, tx, *b.BookingGroupID, req.StartTime, req.EndTime, req.Notes, req.Status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update series"})
		}
	} else {
		if err := h.Bookings.UpdateFieldsTx(ctx, tx, id, req.StartTime, req.EndTime, req.Notes, req.Status); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update booking"})
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true
	return c.JSON(http.StatusOK, echo.Map{"updated": updated})
}

// CancelBooking handles DELETE /v1/admin/bookings/:id[?scope=series].
// Same semantics as the customer cancellation but without the ownership
// restriction.
func (h *AdminBookingHandler) CancelBooking(c echo.Context) error {
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

// Utilization handles GET /v1/admin/reports/utilization?from=&to=.  It
// returns per-room booking counts and booked minutes over the inclusive
// date range.
func (h *AdminBookingHandler) Utilization(c echo.Context) error {
	from, ok := schedule.TryParseDate(strings.TrimSpace(c.QueryParam("from")))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from query parameter is required (YYYY-MM-DD)"})
	}
	to, ok := schedule.TryParseDate(strings.TrimSpace(c.QueryParam("to")))
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to query parameter is required (YYYY-MM-DD)"})
	}
	if to.Before(from) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "to must not be before from"})
	}
	items, err := h.Bookings.UtilizationByRoom(c.Request().Context(), schedule.FormatDate(from), schedule.FormatDate(to))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute utilization"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from":  schedule.FormatDate(from),
		"to":    schedule.FormatDate(to),
		"items": items,
	})
}
