package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caretime/apierr"
	"caretime/auth"
	"caretime/database/patientrepo"
	"caretime/middleware"
	"caretime/models"
	"caretime/ratelimit"
	"caretime/registration"
)

// PatientHandler fronts §6's patient registration, verification, auth and
// session-management routes.
type PatientHandler struct {
	registration *registration.PatientService
	verify       *registration.VerificationService
	auth         *auth.RoleManager
	limiter      *ratelimit.Guard
	logger       *zap.Logger
}

// NewPatientHandler constructs a PatientHandler.
func NewPatientHandler(reg *registration.PatientService, verify *registration.VerificationService, authMgr *auth.Manager, patients patientrepo.Repository, limiter *ratelimit.Guard, logger *zap.Logger) *PatientHandler {
	return &PatientHandler{registration: reg, verify: verify, auth: authMgr.ForPatient(patients), limiter: limiter, logger: logger}
}

// Register handles POST /v1/patient/register.
func (h *PatientHandler) Register(c *gin.Context) {
	var req models.PatientRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	if err := h.limiter.Allow(c.Request.Context(), "patient-register", middleware.ClientIP(c), ratelimit.RegistrationWindow); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}

	patient, err := h.registration.Register(c.Request.Context(), req)
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, patient.Summary())
}

// verifyRequest is the §6 verify/email and verify/phone request body: the
// token alone, plus the patient id the token was issued to (see DESIGN.md's
// Open Question decision — verificationrepo scopes lookup by patient id to
// prevent replaying a token against a different patient).
type verifyRequest struct {
	PatientID string `json:"patientId"`
	Token     string `json:"token"`
}

// VerifyEmail handles POST /v1/patient/verify/email.
func (h *PatientHandler) VerifyEmail(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	if err := h.verify.VerifyEmail(c.Request.Context(), req.PatientID, req.Token); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// VerifyPhone handles POST /v1/patient/verify/phone.
func (h *PatientHandler) VerifyPhone(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	if err := h.verify.VerifyPhone(c.Request.Context(), req.PatientID, req.Token); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Login handles POST /v1/patient/login.
func (h *PatientHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.Respond(c, h.logger, apierr.New(apierr.KindBadInput, "malformed request body"))
		return
	}
	ip := middleware.ClientIP(c)
	if err := h.limiter.Allow(c.Request.Context(), "patient-login-failure", ip, ratelimit.LoginFailureWindow); err != nil {
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
	_ = h.limiter.Reset(c.Request.Context(), "patient-login-failure", ip)
	c.JSON(http.StatusOK, resp)
}

// Refresh handles POST /v1/patient/refresh.
func (h *PatientHandler) Refresh(c *gin.Context) {
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

// Logout handles POST /v1/patient/logout (bearer).
func (h *PatientHandler) Logout(c *gin.Context) {
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

// LogoutAll handles POST /v1/patient/logout-all (bearer).
func (h *PatientHandler) LogoutAll(c *gin.Context) {
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

// ListSessions handles GET /v1/patient/sessions (bearer).
func (h *PatientHandler) ListSessions(c *gin.Context) {
	sessions, err := h.auth.ListSessions(c.Request.Context(), middleware.PrincipalID(c), middleware.SessionID(c))
	if err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// RevokeSession handles DELETE /v1/patient/sessions/{sessionId} (bearer).
func (h *PatientHandler) RevokeSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if err := h.auth.RevokeSession(c.Request.Context(), sessionID, middleware.PrincipalID(c)); err != nil {
		apierr.Respond(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
