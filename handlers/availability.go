package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/availability"
	"caretime/middleware"
	"caretime/models"
)

// AvailabilityHandler fronts §6's provider availability CRUD routes.
type AvailabilityHandler struct {
	manager *availability.Manager
	logger  *zap.Logger
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(manager *availability.Manager, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{manager: manager, logger: logger}
}

// Create handles POST /api/v1/provider/availability (bearer, provider).
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req models.AvailabilityCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	summary, err := h.manager.Create(c.Request.Context(), middleware.PrincipalID(c), req)
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// ListForProvider handles GET /api/v1/provider/{provider_id}/availability.
func (h *AvailabilityHandler) ListForProvider(c *gin.Context) {
	providerID := c.Param("provider_id")
	filters := models.ProviderAvailabilityFilters{
		StartDate:       c.Query("start_date"),
		EndDate:         c.Query("end_date"),
		Status:          models.SlotStatus(c.Query("status")),
		AppointmentType: models.AppointmentType(c.Query("appointment_type")),
	}
	tz := c.Query("timezone")

	days, err := h.manager.ListForProvider(c.Request.Context(), providerID, filters, tz)
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days})
}

// Update handles PUT /api/v1/provider/availability/{slot_id} (bearer, provider).
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var patch models.AvailabilityUpdatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	slotID := c.Param("slot_id")
	if err := h.manager.Update(c.Request.Context(), slotID, middleware.PrincipalID(c), patch); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Delete handles DELETE /api/v1/provider/availability/{slot_id}?delete_recurring&reason (bearer, provider).
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	slotID := c.Param("slot_id")
	opts := models.AvailabilityDeleteOptions{
		DeleteRecurring: c.Query("delete_recurring") == "true",
		Reason:          c.Query("reason"),
	}
	if err := h.manager.Delete(c.Request.Context(), slotID, middleware.PrincipalID(c), opts); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
