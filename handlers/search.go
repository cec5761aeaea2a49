package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/models"
	"caretime/search"
)

// SearchHandler fronts §6's unauthenticated cross-provider search route.
type SearchHandler struct {
	service *search.Service
	logger  *zap.Logger
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(service *search.Service, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{service: service, logger: logger}
}

// Search handles GET /api/v1/availability/search.
func (h *SearchHandler) Search(c *gin.Context) {
	filters := models.SearchFilters{
		Date:            c.Query("date"),
		StartDate:       c.Query("start_date"),
		EndDate:         c.Query("end_date"),
		AppointmentType: models.AppointmentType(c.Query("appointment_type")),
		Specialization:  c.Query("specialization"),
		Location:        c.Query("location"),
		Timezone:        c.Query("timezone"),
		// available_only defaults true per §4.4, and opts out only on an
		// explicit "false".
		AvailableOnly: c.Query("available_only") != "false",
	}
	if v := c.Query("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxPrice = &f
		}
	}
	if v := c.Query("insurance_accepted"); v != "" {
		b := v == "true"
		filters.InsuranceAccepted = &b
	}

	results, err := h.service.Search(c.Request.Context(), filters)
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
