package scheduler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/email"
	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/logger"
)

type fakeSender struct {
	sent     int
	lastTo   string
	lastName string
	fail     error
}

func (f *fakeSender) SendInvoice(_ context.Context, quote domain.Quote, _ []byte, filename string) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent++
	f.lastTo = quote.ClientInfo.Email
	f.lastName = filename
	return nil
}

type workerUpstreamConfig struct{ baseURL string }

func (c workerUpstreamConfig) GetUpstreamBaseURL() string        { return c.baseURL }
func (c workerUpstreamConfig) GetUpstreamTimeout() time.Duration { return 2 * time.Second }
func (c workerUpstreamConfig) GetUpstreamRatePerSecond() float64 { return 100 }
func (c workerUpstreamConfig) GetUpstreamBurst() int             { return 100 }

type workerRedisConfig struct{ url string }

func (c workerRedisConfig) GetRedisURL() string       { return c.url }
func (c workerRedisConfig) GetAsynqQueueName() string { return "portal" }
func (c workerRedisConfig) GetAsynqConcurrency() int  { return 2 }

type workerSessionConfig struct{}

func (workerSessionConfig) GetJWTAccessSecret() string       { return "secret" }
func (workerSessionConfig) GetAccessTokenTTL() time.Duration { return time.Minute }
func (workerSessionConfig) GetSessionTTL() time.Duration     { return time.Hour }

func deliverableQuote() domain.Quote {
	return domain.Quote{
		ID:      "q-1",
		Invoice: "INV-7",
		ClientInfo: domain.ClientInfo{
			FirstName: "Avery", Email: "avery@example.com",
			Address: "12 Lakeshore Rd", PhoneNumber: "+1 705 555 0134",
		},
		Services:  []domain.ServiceLine{{ServiceType: domain.ExteriorWindowCleaning, Units: 4, Subtotal: 100, Total: 100}},
		Subtotal:  100,
		TaxValue:  13,
		Total:     113,
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestWorker(t *testing.T, upstreamHandler http.Handler, sender email.Sender) (*Worker, *store.SnapshotCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	server := httptest.NewServer(upstreamHandler)
	t.Cleanup(server.Close)

	log := logger.New("test")
	client := upstream.New(workerUpstreamConfig{baseURL: server.URL}, log)
	sessions := session.NewService(session.NewStore(rdb, time.Hour), client, workerSessionConfig{}, log)
	snapshots := store.NewSnapshotCache(rdb, time.Hour)

	w, err := NewWorker(workerRedisConfig{url: "redis://" + mr.Addr()}, sessions, client, snapshots, sender, nil, log)
	if err != nil {
		t.Fatalf("NewWorker: %v", err)
	}
	return w, snapshots
}

func TestInvoiceDeliverFromSnapshotFallback(t *testing.T) {
	sender := &fakeSender{}
	// Upstream is down for this task; the cached snapshot carries it.
	w, snapshots := newTestWorker(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
	}), sender)

	if err := snapshots.Put(context.Background(), deliverableQuote()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	task, err := NewInvoiceDeliverTask(InvoiceDeliverPayload{QuoteID: "q-1"})
	if err != nil {
		t.Fatalf("NewInvoiceDeliverTask: %v", err)
	}
	if err := w.handleInvoiceDeliver(context.Background(), task); err != nil {
		t.Fatalf("handleInvoiceDeliver: %v", err)
	}
	if sender.sent != 1 || sender.lastTo != "avery@example.com" {
		t.Fatalf("sender = %+v, want one delivery to the client", sender)
	}
	if sender.lastName != "avery-quote.pdf" {
		t.Fatalf("filename = %q", sender.lastName)
	}
}

func TestInvoiceDeliverPrefersFreshQuote(t *testing.T) {
	fresh := deliverableQuote()
	fresh.Total = 226 // differs from the snapshot copy

	var sawBearer string
	handler := http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			_ = json.NewEncoder(rw).Encode(map[string]any{"data": map[string]any{
				"token": "up-tok",
				"user":  map[string]any{"id": "u-1", "email": "jordan@example.com"},
			}})
		case "/quote/q-1":
			sawBearer = r.Header.Get("Authorization")
			_ = json.NewEncoder(rw).Encode(map[string]any{"data": fresh})
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	})

	sender := &fakeSender{}
	w, snapshots := newTestWorker(t, handler, sender)

	stale := deliverableQuote()
	if err := snapshots.Put(context.Background(), stale); err != nil {
		t.Fatalf("Put: %v", err)
	}

	result, err := w.sessions.Login(context.Background(), "jordan@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var claims struct {
		Sid string `json:"sid"`
	}
	if err := decodeJWTPayload(result.AccessToken, &claims); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	sessionID := claims.Sid

	task, _ := NewInvoiceDeliverTask(InvoiceDeliverPayload{QuoteID: "q-1", SessionID: sessionID})
	if err := w.handleInvoiceDeliver(context.Background(), task); err != nil {
		t.Fatalf("handleInvoiceDeliver: %v", err)
	}
	if sawBearer != "Bearer up-tok" {
		t.Fatalf("upstream fetch used %q, want the session's bearer token", sawBearer)
	}
	if sender.sent != 1 {
		t.Fatalf("sent = %d, want 1", sender.sent)
	}
}

func TestInvoiceDeliverSkipsQuotesWithoutEmail(t *testing.T) {
	sender := &fakeSender{}
	w, snapshots := newTestWorker(t, http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusBadGateway)
	}), sender)

	quote := deliverableQuote()
	quote.ClientInfo.Email = ""
	if err := snapshots.Put(context.Background(), quote); err != nil {
		t.Fatalf("Put: %v", err)
	}

	task, _ := NewInvoiceDeliverTask(InvoiceDeliverPayload{QuoteID: "q-1"})
	if err := w.handleInvoiceDeliver(context.Background(), task); err != nil {
		t.Fatalf("handleInvoiceDeliver: %v", err)
	}
	if sender.sent != 0 {
		t.Fatalf("sent = %d, want 0 when the quote has no client email", sender.sent)
	}
}

func decodeJWTPayload(token string, out any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return fmt.Errorf("not a JWT: %d segments", len(parts))
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
