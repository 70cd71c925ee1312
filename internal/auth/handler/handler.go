// Package handler exposes the auth endpoints: login flows over the
// remote quote service's auth API, plus session-bound operations.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"simcoe_portal/internal/auth/transport"
	"simcoe_portal/internal/session"
	"simcoe_portal/platform/httpkit"
	"simcoe_portal/platform/phone"
	"simcoe_portal/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	sessions *session.Service
	val      *validator.Validator
}

func New(sessions *session.Service, val *validator.Validator) *Handler {
	return &Handler{sessions: sessions, val: val}
}

// RegisterRoutes mounts the public auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/otp/send", h.SendOTP)
	rg.POST("/otp/verify", h.VerifyOTP)
}

func (h *Handler) bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

// normalizePhone converts a recognizable number to E.164 for the
// upstream OTP API; anything else passes through as typed.
func normalizePhone(input string) string {
	if phone.IsValid(input) {
		return phone.NormalizeE164(input)
	}
	return input
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) SendOTP(c *gin.Context) {
	var req transport.SendOTPRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.sessions.SendOTP(c.Request.Context(), normalizePhone(req.PhoneNumber)); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "code sent"})
}

func (h *Handler) VerifyOTP(c *gin.Context) {
	var req transport.VerifyOTPRequest
	if !h.bind(c, &req) {
		return
	}

	result, err := h.sessions.VerifyOTP(c.Request.Context(), normalizePhone(req.PhoneNumber), req.Code)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, result)
}

// Logout closes the caller's session. The access token keeps its expiry
// but stops working because the session it names is gone.
func (h *Handler) Logout(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	if err := h.sessions.Logout(c.Request.Context(), id.SessionID()); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "logged out"})
}

// Me returns the profile the session was opened with.
func (h *Handler) Me(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	sess, err := h.sessions.Resolve(c.Request.Context(), id.SessionID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, sess.User)
}

// ResetPassword proxies the password change upstream. Runs behind the
// session middleware so the request context carries the upstream token.
func (h *Handler) ResetPassword(c *gin.Context) {
	var req transport.ResetPasswordRequest
	if !h.bind(c, &req) {
		return
	}

	if err := h.sessions.ResetPassword(c.Request.Context(), req.CurrentPassword, req.NewPassword); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, gin.H{"message": "password updated"})
}
