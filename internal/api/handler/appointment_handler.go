package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/estetica/salon-booking/internal/core/domain"
	"github.com/estetica/salon-booking/internal/core/ports"
)

// AppointmentHandler handles HTTP requests for appointment operations.
type AppointmentHandler struct {
	service ports.AppointmentService
}

func NewAppointmentHandler(service ports.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{service: service}
}

// Create books an appointment for the calling client.
//
// @Summary      Book an appointment
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAppointmentRequest  true  "Booking request"
// @Success      201   {object}  appointmentResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/appointments [post]
func (h *AppointmentHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	a, err := h.service.Create(c.Request().Context(), ports.CreateAppointmentInput{
		UserID:  actor.UserID,
		Service: req.Service,
		Date:    req.Date,
		Time:    req.Time,
	})
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/v1/appointments/"+a.ID)
	return c.JSON(http.StatusCreated, toAppointmentResponse(a))
}

// List returns every appointment for an admin, the caller's own otherwise.
//
// @Summary      List appointments
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  appointmentListResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/appointments [get]
func (h *AppointmentHandler) List(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	items, err := h.service.List(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppointmentList(items))
}

// UpdateStatus confirms or cancels an appointment and returns the caller's
// refreshed listing.
//
// @Summary      Change appointment status
// @Description  Admins may confirm or cancel; clients may only cancel their own. Only pending appointments change; repeating the current status is a no-op.
// @Tags         appointments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string               true  "Appointment ID"
// @Param        body  body      updateStatusRequest  true  "Target status"
// @Success      200   {object}  appointmentListResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/appointments/{id}/status [patch]
func (h *AppointmentHandler) UpdateStatus(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	items, err := h.service.SetStatus(c.Request().Context(), actor, c.Param("id"), status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAppointmentList(items))
}

// History returns the status changes recorded for one appointment.
//
// @Summary      Appointment status history
// @Tags         appointments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Appointment ID"
// @Success      200  {object}  historyResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/appointments/{id}/history [get]
func (h *AppointmentHandler) History(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	changes, err := h.service.History(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}

	resp := historyResponse{AppointmentID: id, Changes: make([]statusChangeResponse, 0, len(changes))}
	for _, ch := range changes {
		resp.Changes = append(resp.Changes, statusChangeResponse{
			ID:        ch.ID,
			From:      string(ch.From),
			To:        string(ch.To),
			ActorID:   ch.ActorID,
			ActorRole: string(ch.ActorRole),
			At:        ch.At,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
