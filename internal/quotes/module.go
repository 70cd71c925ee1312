// Package quotes is the portal's quoting bounded context: draft building,
// line pricing through the remote quote service, quote browsing with
// offline snapshots, and invoice rendering and delivery.
package quotes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	apphttp "simcoe_portal/internal/http"
	"simcoe_portal/internal/quotes/handler"
	"simcoe_portal/internal/quotes/service"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/scheduler"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/storage"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/logger"
	"simcoe_portal/platform/validator"
)

// Module is the quotes bounded context module implementing http.Module.
type Module struct {
	handler   *handler.Handler
	service   *service.Service
	sessionMW gin.HandlerFunc
}

// NewModule creates the quotes module. archive may be nil when MinIO is
// disabled; sched may be nil when invoice delivery is not configured.
func NewModule(
	rdb *redis.Client,
	client *upstream.Client,
	sessions *session.Service,
	sched scheduler.InvoiceScheduler,
	archive *storage.Archive,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	svc := service.NewService(
		store.NewDraftStore(rdb, store.DefaultDraftTTL),
		store.NewSnapshotCache(rdb, store.DefaultSnapshotTTL),
		store.NewListingCache(rdb, store.DefaultListingTTL),
		client,
		sched,
		archive,
		log,
	)

	return &Module{
		handler:   handler.New(svc, val),
		service:   svc,
		sessionMW: session.Middleware(sessions),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the quote service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the quote routes. Everything runs behind the
// session middleware so handlers always see an upstream token.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/quotes")
	group.Use(m.sessionMW)
	m.handler.RegisterRoutes(group)
}

var _ apphttp.Module = (*Module)(nil)
