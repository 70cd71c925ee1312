package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/quotes/service"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/httpkit"
	"simcoe_portal/platform/logger"
	"simcoe_portal/platform/validator"
)

type upstreamTestConfig struct {
	baseURL string
}

func (c upstreamTestConfig) GetUpstreamBaseURL() string        { return c.baseURL }
func (c upstreamTestConfig) GetUpstreamTimeout() time.Duration { return 2 * time.Second }
func (c upstreamTestConfig) GetUpstreamRatePerSecond() float64 { return 100 }
func (c upstreamTestConfig) GetUpstreamBurst() int             { return 100 }

// fakeIdentity stands in for the access-token middleware.
func fakeIdentity(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextSessionIDKey, "sess-1")
		c.Set(httpkit.ContextRoleKey, "user")
		c.Next()
	}
}

func newTestRouter(t *testing.T, upstreamHandler http.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	server := httptest.NewServer(upstreamHandler)
	t.Cleanup(server.Close)

	log := logger.New("test")
	svc := service.NewService(
		store.NewDraftStore(rdb, time.Hour),
		store.NewSnapshotCache(rdb, time.Hour),
		store.NewListingCache(rdb, time.Hour),
		upstream.New(upstreamTestConfig{baseURL: server.URL}, log),
		nil,
		nil,
		log,
	)

	engine := gin.New()
	group := engine.Group("/quotes")
	group.Use(fakeIdentity("user-1"))
	New(svc, validator.New()).RegisterRoutes(group)
	return engine
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok", "data": data})
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestDraftEndpointsRoundTrip(t *testing.T) {
	engine := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, map[string]any{
			"services": []map[string]any{{
				"serviceType": "EXTERIOR_WINDOW_CLEANING",
				"totalCost":   90.0,
			}},
		})
	}))

	rec := doJSON(t, engine, http.MethodPost, "/quotes/drafts", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create draft: status %d body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Draft struct {
			ID string `json:"id"`
		} `json:"draft"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	base := "/quotes/drafts/" + created.Draft.ID

	rec = doJSON(t, engine, http.MethodPut, base+"/client-info", `{"firstName":"Avery","address":"12 King St","city":"Barrie","province":"ON","postalCode":"L4M 1A1","phoneNumber":"705-555-0101"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("client-info: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, base+"/editor/begin", `{"serviceType":"EXTERIOR_WINDOW_CLEANING"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("editor begin: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, engine, http.MethodPut, base+"/editor/units", `{"units":12}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("editor units: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, engine, http.MethodPost, base+"/editor/submit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("editor submit: status %d body %s", rec.Code, rec.Body.String())
	}

	var draftView struct {
		Totals struct {
			Subtotal float64 `json:"subtotal"`
			Total    float64 `json:"total"`
		} `json:"totals"`
		Validation struct {
			IsValid bool `json:"isValid"`
		} `json:"validation"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &draftView); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if draftView.Totals.Subtotal != 90 {
		t.Errorf("subtotal = %v, want 90", draftView.Totals.Subtotal)
	}
	if !draftView.Validation.IsValid {
		t.Error("draft with full client info and one line should validate")
	}
}

func TestSetDiscountRejectsUnknownType(t *testing.T) {
	engine := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := doJSON(t, engine, http.MethodPost, "/quotes/drafts", "")
	var created struct {
		Draft struct {
			ID string `json:"id"`
		} `json:"draft"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &created)

	rec = doJSON(t, engine, http.MethodPut, "/quotes/drafts/"+created.Draft.ID+"/discount", `{"type":"BOGOF","value":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRemoveLineRejectsBadIndex(t *testing.T) {
	engine := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := doJSON(t, engine, http.MethodDelete, "/quotes/drafts/any/lines/banana", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetQuoteReportsStaleness(t *testing.T) {
	down := false
	engine := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(w, domain.Quote{ID: "q-1", Invoice: "0001"})
	}))

	rec := doJSON(t, engine, http.MethodGet, "/quotes/q-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), `"stale":true`) {
		t.Error("fresh fetch must not be stale")
	}

	down = true
	rec = doJSON(t, engine, http.MethodGet, "/quotes/q-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("fallback status = %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"stale":true`) {
		t.Errorf("fallback body missing stale flag: %s", rec.Body.String())
	}
}

func TestSendInvoiceWithoutQueueIsUnavailable(t *testing.T) {
	engine := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := doJSON(t, engine, http.MethodPost, "/quotes/q-1/invoice/send", "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
