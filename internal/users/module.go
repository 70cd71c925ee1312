// Package users proxies staff account management to the remote quote
// service. Admin only; the portal stores no account data of its own.
package users

import (
	"github.com/gin-gonic/gin"

	apphttp "simcoe_portal/internal/http"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/validator"
)

// Module is the user management module implementing http.Module.
type Module struct {
	handler   *handler
	sessionMW gin.HandlerFunc
}

// NewModule creates the user management module.
func NewModule(client *upstream.Client, sessions *session.Service, val *validator.Validator) *Module {
	return &Module{
		handler:   &handler{client: client, val: val},
		sessionMW: session.Middleware(sessions),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// RegisterRoutes mounts the user management routes on the admin group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Admin.Group("/users")
	group.Use(m.sessionMW)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Get)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

var _ apphttp.Module = (*Module)(nil)
