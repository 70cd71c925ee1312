// Package tariffs proxies the per-service pricing configuration held by
// the remote quote service. The portal renders and edits the tariffs but
// never applies them; pricing always happens upstream.
package tariffs

import (
	"github.com/gin-gonic/gin"

	apphttp "simcoe_portal/internal/http"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/validator"
)

// Module is the tariff configuration module implementing http.Module.
type Module struct {
	handler   *handler
	sessionMW gin.HandlerFunc
}

// NewModule creates the tariffs module.
func NewModule(client *upstream.Client, sessions *session.Service, val *validator.Validator) *Module {
	return &Module{
		handler:   &handler{client: client, val: val},
		sessionMW: session.Middleware(sessions),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tariffs"
}

// RegisterRoutes mounts the tariff routes: reads for any staff member,
// writes admin only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/quote-settings", m.sessionMW, m.handler.List)

	group := ctx.Admin.Group("/quote-settings")
	group.Use(m.sessionMW)
	group.POST("", m.handler.Create)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

var _ apphttp.Module = (*Module)(nil)
