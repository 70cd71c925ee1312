// Package auth provides the portal's authentication module: the public
// login and OTP endpoints and the session-bound account operations. The
// credential checks themselves happen on the remote quote service; the
// portal only mints and tracks its own sessions.
package auth

import (
	"github.com/gin-gonic/gin"

	"simcoe_portal/internal/auth/handler"
	apphttp "simcoe_portal/internal/http"
	"simcoe_portal/internal/session"
	"simcoe_portal/platform/validator"
)

// Module is the auth module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	sessionMW gin.HandlerFunc
}

// NewModule creates the auth module over the session service.
func NewModule(sessions *session.Service, val *validator.Validator) *Module {
	return &Module{
		handler:   handler.New(sessions, val),
		sessionMW: session.Middleware(sessions),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	ctx.Protected.POST("/auth/logout", m.handler.Logout)
	ctx.Protected.POST("/auth/reset-password", m.sessionMW, m.handler.ResetPassword)
	ctx.Protected.GET("/users/me", m.handler.Me)
}

var _ apphttp.Module = (*Module)(nil)
