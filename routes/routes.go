// Package routes centralizes endpoint registration, grounded on the
// teacher's routes/routes.go: one RegisterXRoutes function per resource
// group plus a RegisterRoutes entry point wiring global middleware first.
package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/handlers"
	"caretime/middleware"
)

// Handlers bundles every resource handler RegisterRoutes wires up.
type Handlers struct {
	Provider     *handlers.ProviderHandler
	Patient      *handlers.PatientHandler
	Availability *handlers.AvailabilityHandler
	Search       *handlers.SearchHandler
	Appointment  *handlers.AppointmentHandler
}

// Auth bundles the bearer-auth dependencies RegisterRoutes needs per role.
type Auth struct {
	ProviderBearer gin.HandlerFunc
	PatientBearer  gin.HandlerFunc
}

// RegisterRoutes wires global middleware and every route group onto r.
func RegisterRoutes(r *gin.Engine, h Handlers, a Auth, logger *zap.Logger) {
	r.Use(middleware.Recovery(logger))
	r.Use(gin.Logger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.NoRoute(middleware.NotFoundHandler(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	registerProviderRoutes(r, h.Provider, a.ProviderBearer)
	registerPatientRoutes(r, h.Patient, a.PatientBearer)
	registerAvailabilityRoutes(r, h.Availability, a.ProviderBearer)
	registerSearchRoutes(r, h.Search)
	registerAppointmentRoutes(r, h.Appointment, a.PatientBearer)
}

func registerProviderRoutes(r *gin.Engine, h *handlers.ProviderHandler, bearer gin.HandlerFunc) {
	v1 := r.Group("/v1/provider")
	{
		v1.POST("/register", h.Register)
		v1.POST("/login", h.Login)
		v1.POST("/refresh", h.Refresh)
		v1.POST("/logout", bearer, h.Logout)
		v1.POST("/logout-all", bearer, h.LogoutAll)
	}
}

func registerPatientRoutes(r *gin.Engine, h *handlers.PatientHandler, bearer gin.HandlerFunc) {
	v1 := r.Group("/v1/patient")
	{
		v1.POST("/register", h.Register)
		v1.POST("/verify/email", h.VerifyEmail)
		v1.POST("/verify/phone", h.VerifyPhone)
		v1.POST("/login", h.Login)
		v1.POST("/refresh", h.Refresh)
		v1.POST("/logout", bearer, h.Logout)
		v1.POST("/logout-all", bearer, h.LogoutAll)
		v1.GET("/sessions", bearer, h.ListSessions)
		v1.DELETE("/sessions/:sessionId", bearer, h.RevokeSession)
	}
}

func registerAvailabilityRoutes(r *gin.Engine, h *handlers.AvailabilityHandler, bearer gin.HandlerFunc) {
	api := r.Group("/api/v1/provider")
	{
		api.POST("/availability", bearer, h.Create)
		api.GET("/:provider_id/availability", h.ListForProvider)
		api.PUT("/availability/:slot_id", bearer, h.Update)
		api.DELETE("/availability/:slot_id", bearer, h.Delete)
	}
}

func registerSearchRoutes(r *gin.Engine, h *handlers.SearchHandler) {
	r.GET("/api/v1/availability/search", h.Search)
}

func registerAppointmentRoutes(r *gin.Engine, h *handlers.AppointmentHandler, bearer gin.HandlerFunc) {
	v1 := r.Group("/v1/appointments")
	{
		v1.POST("/book", bearer, h.Book)
		v1.GET("/patient/:patientId", bearer, h.ListForPatient)
		v1.PUT("/:appointmentId/cancel", bearer, h.Cancel)
	}
}

