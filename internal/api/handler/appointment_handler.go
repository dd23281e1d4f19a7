package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zetas/barbershop/internal/core/ports"
)

// AppointmentHandler handles HTTP requests for the appointment collection.
type AppointmentHandler struct {
	service ports.AppointmentService
}

func NewAppointmentHandler(service ports.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// List handles GET /api/appointments.
//
// @Summary      List all appointments
// @Tags         appointments
// @Produce      json
// @Success      200  {object}  appointmentListResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	appts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appts)
}

// Create handles POST /api/appointments. Anonymous callers always get a
// pending appointment.
//
// @Summary      Create an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Param        body  body      createAppointmentRequest  true  "Appointment fields"
// @Success      201   {object}  domain.Appointment
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	appt, err := h.service.Create(c.Request().Context(), toCreateAppointmentInput(req, isAdmin(c)))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appt)
}

// Update handles PATCH /api/appointments/:id.
//
// @Summary      Update an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                    true  "Appointment id"
// @Param        body  body      updateAppointmentRequest  true  "Fields to change"
// @Success      200   {object}  domain.Appointment
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/appointments/{id} [patch]
func (h *AppointmentHandler) Update(c echo.Context) error {
	var req updateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	appt, err := h.service.Update(c.Request().Context(), c.Param("id"), toAppointmentPatch(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, appt)
}

// Delete handles DELETE /api/appointments/:id. Unknown ids succeed.
//
// @Summary      Delete an appointment
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment id"
// @Success      200  {object}  successResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/appointments/{id} [delete]
func (h *AppointmentHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// Availability handles GET /api/availability. Admin sessions get the finer
// admin grid with edit actions.
//
// @Summary      Slot availability
// @Tags         bookings
// @Produce      json
// @Param        from  query     string  false  "First day (YYYY-MM-DD), defaults to the start of the current week"
// @Param        days  query     int     false  "Number of days (1-31), defaults to 7"
// @Success      200   {object}  availabilityResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/availability [get]
func (h *AppointmentHandler) Availability(c echo.Context) error {
	var q availabilityQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	days, err := h.service.Availability(c.Request().Context(), ports.AvailabilityInput{
		From:  q.From,
		Days:  q.Days,
		Admin: isAdmin(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, days)
}

// Book handles POST /api/bookings: a create that must land on a free slot of
// the calendar.
//
// @Summary      Book a slot
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Param        body  body      bookSlotRequest  true  "Booking"
// @Success      201   {object}  domain.Appointment
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/bookings [post]
func (h *AppointmentHandler) Book(c echo.Context) error {
	var req bookSlotRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	appt, err := h.service.Book(c.Request().Context(), ports.BookSlotInput{
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Date:        req.Date,
		StartTime:   req.StartTime,
		Service:     req.Service,
		Notes:       req.Notes,
		Admin:       isAdmin(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, appt)
}
