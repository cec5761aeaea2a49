package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/booking"
	"caretime/middleware"
	"caretime/models"
)

// AppointmentHandler fronts §6's patient-authenticated booking routes.
type AppointmentHandler struct {
	manager *booking.Manager
	logger  *zap.Logger
}

// NewAppointmentHandler constructs an AppointmentHandler.
func NewAppointmentHandler(manager *booking.Manager, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{manager: manager, logger: logger}
}

// Book handles POST /v1/appointments/book (bearer, patient).
func (h *AppointmentHandler) Book(c *gin.Context) {
	var req models.BookAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	if req.PatientID == "" {
		req.PatientID = middleware.PrincipalID(c)
	}
	resp, err := h.manager.Reserve(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListForPatient handles GET /v1/appointments/patient/{patientId}.
func (h *AppointmentHandler) ListForPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	if patientID != middleware.PrincipalID(c) {
		apierr.Respond(c, h.logger, apierr.NotFound("resource not found"))
		return
	}

	filters := models.PatientAppointmentFilters{
		StartDate:       c.Query("start_date"),
		EndDate:         c.Query("end_date"),
		Status:          models.SlotStatus(c.Query("status")),
		AppointmentType: models.AppointmentType(c.Query("appointment_type")),
	}
	page := models.Page{Page: 1, Limit: 10}
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v >= 1 {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 100 {
		page.Limit = v
	}

	result, err := h.manager.ListForPatient(c.Request.Context(), patientID, filters, page)
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Cancel handles PUT /v1/appointments/{appointmentId}/cancel (bearer, patient).
// The optional reason carried in the request body is accepted but not
// persisted: §3's Slot has no cancellation-reason field, and the booking
// manager's Cancel only needs slot id and caller id to resolve the §4.3
// state transition.
func (h *AppointmentHandler) Cancel(c *gin.Context) {
	var req models.CancelAppointmentRequest
	_ = c.ShouldBindJSON(&req)

	appointmentID := c.Param("appointmentId")
	if err := h.manager.Cancel(c.Request.Context(), appointmentID, middleware.PrincipalID(c)); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
