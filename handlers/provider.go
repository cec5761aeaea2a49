// Package handlers translates HTTP requests into calls against the domain
// managers/services and renders their results, in the shape of the
// teacher's handlers package: one *Handler struct per resource wrapping the
// service(s) it fronts, a constructor, and one exported method per route.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/auth"
	"caretime/database/providerrepo"
	"caretime/middleware"
	"caretime/models"
	"caretime/ratelimit"
	"caretime/registration"
)

// ProviderHandler fronts §6's provider registration and auth routes.
type ProviderHandler struct {
	registration *registration.ProviderService
	auth         *auth.RoleManager
	limiter      *ratelimit.Guard
	logger       *zap.Logger
}

// NewProviderHandler constructs a ProviderHandler.
func NewProviderHandler(reg *registration.ProviderService, authMgr *auth.Manager, providers providerrepo.Repository, limiter *ratelimit.Guard, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{registration: reg, auth: authMgr.ForProvider(providers), limiter: limiter, logger: logger}
}

// Register handles POST /v1/provider/register.
func (h *ProviderHandler) Register(c *gin.Context) {
	var req models.ProviderRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	if err := h.limiter.Allow(c.Request.Context(), "provider-register", middleware.ClientIP(c), ratelimit.RegistrationWindow); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}

	provider, err := h.registration.Register(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, provider.Summary())
}

// Login handles POST /v1/provider/login.
func (h *ProviderHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	ip := middleware.ClientIP(c)
	if err := h.limiter.Allow(c.Request.Context(), "provider-login-failure", ip, ratelimit.LoginFailureWindow); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), auth.LoginParams{
		LoginRequest: req,
		SourceAddr:   ip,
		UserAgent:    c.Request.UserAgent(),
	})
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	_ = h.limiter.Reset(c.Request.Context(), "provider-login-failure", ip)
	c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /v1/provider/refresh.
func (h *ProviderHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	resp, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken, middleware.ClientIP(c))
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout handles POST /v1/provider/logout (bearer).
func (h *ProviderHandler) Logout(c *gin.Context) {
	var req models.LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LogoutAll handles POST /v1/provider/logout-all (bearer).
func (h *ProviderHandler) LogoutAll(c *gin.Context) {
	var req models.LogoutAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	if err := h.auth.LogoutAll(c.Request.Context(), middleware.PrincipalID(c), req.Password); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
