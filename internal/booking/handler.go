package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"fitslot/internal/api"
	"fitslot/internal/auth"
	"fitslot/internal/gym"
	"fitslot/internal/logger"
	"fitslot/internal/scheduling"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// actorFrom maps the authenticated caller to a lifecycle role; admins act as staff.
func actorFrom(c *gin.Context) (Actor, bool) {
	id, ok := auth.GetUserID(c)
	if !ok {
		return Actor{}, false
	}
	role, _ := auth.GetUserRole(c)
	if auth.IsStaff(role) {
		return Actor{ID: id, Role: RoleStaff}, true
	}
	return Actor{ID: id, Role: RoleMember}, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scheduling.ErrInvalidInterval), errors.Is(err, ErrSlotInPast):
		return http.StatusBadRequest
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, gym.ErrTrainerNotFound), errors.Is(err, gym.ErrServiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduling.ErrTrainerBusy), errors.Is(err, ErrAlreadyCompleted), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, scheduling.ErrOutsideAvailability):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotPermitted):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallback, "error", err, "path", c.FullPath())
		c.JSON(status, api.ErrorResponse{Error: fallback})
		return
	}
	c.JSON(status, api.ErrorResponse{Error: err.Error(), Reason: Reason(err)})
}

func pathID(c *gin.Context, name, label string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + label})
		return 0, false
	}
	return id, true
}

func queryDate(c *gin.Context, name string, required bool) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" && !required {
		return time.Time{}, true
	}
	d, err := scheduling.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid " + name + ", expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return d, true
}

// queryRange reads optional from/to dates and rejects a reversed range.
func queryRange(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := queryDate(c, "from", false)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := queryDate(c, "to", false)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must not be before from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// GetAvailableSlots godoc
// @Summary      Open start times of a trainer
// @Description  Start times on the date whose interval fits a window and overlaps no active booking.
// @Tags         trainers
// @Produce      json
// @Param        trainerID   path   int     true   "Trainer ID"
// @Param        date        query  string  true   "Date (YYYY-MM-DD)"
// @Param        service_id  query  int     false  "Service whose duration sets the slot span"
// @Success      200  {object}  SlotsResponse
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /trainers/{trainerID}/slots [get]
func (h *Handler) GetAvailableSlots(c *gin.Context) {
	trainerID, ok := pathID(c, "trainerID", "trainer ID")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date", true)
	if !ok {
		return
	}

	serviceID := 0
	if raw := c.Query("service_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid service ID"})
			return
		}
		serviceID = id
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), trainerID, date, serviceID)
	if err != nil {
		respondError(c, err, "Failed to compute available slots")
		return
	}

	c.JSON(http.StatusOK, slots)
}

// CreateBooking godoc
// @Summary      Request a booking
// @Description  Creates a pending booking; end time and price come from the service.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateBookingRequest  true  "Booking request"
// @Success      201      {object}  Booking
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Failure      422      {object}  api.ErrorResponse
// @Failure      500      {object}  api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	memberID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}

	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid date, expected YYYY-MM-DD"})
		return
	}
	start, err := scheduling.ParseTimeOfDay(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid start_time, expected HH:MM"})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), NewBooking{
		MemberID:  memberID,
		TrainerID: req.TrainerID,
		ServiceID: req.ServiceID,
		Date:      date,
		Start:     start,
		Notes:     req.Notes,
	})
	if err != nil {
		respondError(c, err, "Failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ListMyBookings godoc
// @Summary      List my bookings
// @Description  Completes elapsed approved bookings, then returns the caller's bookings, newest first.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   Booking
// @Failure      500  {object}  api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	memberID, ok := auth.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.ListMemberBookings(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetBooking godoc
// @Summary      Booking details
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	bookingID, ok := pathID(c, "bookingID", "booking ID")
	if !ok {
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), bookingID, actor)
	if err != nil {
		respondError(c, err, "Failed to fetch booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// CancelBooking godoc
// @Summary      Cancel booking
// @Description  Cancels a pending or approved booking of the caller.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  Booking
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	bookingID, ok := pathID(c, "bookingID", "booking ID")
	if !ok {
		return
	}

	b, err := h.service.ChangeBookingStatus(c.Request.Context(), bookingID, StatusCancelled, actor)
	if err != nil {
		respondError(c, err, "Failed to cancel booking")
		return
	}

	c.JSON(http.StatusOK, b)
}

// UpdateStatus godoc
// @Summary      Change booking status
// @Description  Staff-only: approve, reject, complete or cancel a booking.
// @Tags         staff
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int                  true  "Booking ID"
// @Param        request    body      ChangeStatusRequest  true  "Target status"
// @Success      200        {object}  Booking
// @Failure      400        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      409        {object}  api.ErrorResponse
// @Router       /staff/bookings/{bookingID}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}
	bookingID, ok := pathID(c, "bookingID", "booking ID")
	if !ok {
		return
	}

	var req ChangeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	if errs := api.ValidateStruct(req); len(errs) > 0 {
		api.RespondWithValidationErrors(c, errs)
		return
	}
	target, err := ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	b, err := h.service.ChangeBookingStatus(c.Request.Context(), bookingID, target, actor)
	if err != nil {
		respondError(c, err, "Failed to change booking status")
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListBookings godoc
// @Summary      List bookings
// @Description  Staff-only: bookings filtered by status, trainer and date.
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        status      query  string  false  "Status"
// @Param        trainer_id  query  int     false  "Trainer ID"
// @Param        date        query  string  false  "Date (YYYY-MM-DD)"
// @Param        from        query  string  false  "First date of a range (YYYY-MM-DD)"
// @Param        to          query  string  false  "Last date of a range (YYYY-MM-DD)"
// @Success      200  {array}   BookingWithDetails
// @Failure      400  {object}  api.ErrorResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /staff/bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	var f Filter

	if raw := c.Query("status"); raw != "" {
		st, err := ParseStatus(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid status"})
			return
		}
		f.Status = st
	}
	if raw := c.Query("trainer_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid trainer ID"})
			return
		}
		f.TrainerID = id
	}
	date, ok := queryDate(c, "date", false)
	if !ok {
		return
	}
	if !date.IsZero() {
		f.Date = &date
	}
	from, to, ok := queryRange(c)
	if !ok {
		return
	}
	if !from.IsZero() {
		f.From = &from
	}
	if !to.IsZero() {
		f.To = &to
	}

	h.respondList(c, f)
}

// ListTrainerDay godoc
// @Summary      Bookings of a trainer on a date
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        trainerID  path   int     true  "Trainer ID"
// @Param        date       query  string  true  "Date (YYYY-MM-DD)"
// @Success      200  {array}   BookingWithDetails
// @Failure      400  {object}  api.ErrorResponse
// @Router       /staff/trainers/{trainerID}/bookings [get]
func (h *Handler) ListTrainerDay(c *gin.Context) {
	trainerID, ok := pathID(c, "trainerID", "trainer ID")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date", true)
	if !ok {
		return
	}

	h.respondList(c, Filter{TrainerID: trainerID, Date: &date})
}

func (h *Handler) respondList(c *gin.Context, f Filter) {
	rows, err := h.service.ListBookings(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// ListToday godoc
// @Summary      Today's bookings
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}   BookingWithDetails
// @Router       /staff/bookings/today [get]
func (h *Handler) ListToday(c *gin.Context) {
	rows, err := h.service.ListToday(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetStats godoc
// @Summary      Booking statistics
// @Description  Staff-only: counts per status, completed revenue and average price. Defaults to the current month.
// @Tags         staff
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "From date (YYYY-MM-DD)"
// @Param        to    query     string  false  "To date (YYYY-MM-DD)"
// @Success      200   {object}  StatsReport
// @Failure      400   {object}  api.ErrorResponse
// @Failure      500   {object}  api.ErrorResponse
// @Router       /staff/bookings/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	from, to, ok := queryRange(c)
	if !ok {
		return
	}

	report, err := h.service.Stats(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err, "Failed to fetch stats")
		return
	}
	c.JSON(http.StatusOK, report)
}
