package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/scheduler"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/apperr"
	"simcoe_portal/platform/logger"
)

func sessionContext(ctx context.Context, sessionID string) context.Context {
	return session.ContextWithID(ctx, sessionID)
}

type upstreamTestConfig struct {
	baseURL string
}

func (c upstreamTestConfig) GetUpstreamBaseURL() string        { return c.baseURL }
func (c upstreamTestConfig) GetUpstreamTimeout() time.Duration { return 2 * time.Second }
func (c upstreamTestConfig) GetUpstreamRatePerSecond() float64 { return 100 }
func (c upstreamTestConfig) GetUpstreamBurst() int             { return 100 }

type fakeQueue struct {
	payloads []scheduler.InvoiceDeliverPayload
}

func (f *fakeQueue) EnqueueInvoiceDelivery(_ context.Context, payload scheduler.InvoiceDeliverPayload) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

type testHarness struct {
	svc    *Service
	server *httptest.Server
	redis  *miniredis.Miniredis
	queue  *fakeQueue
}

func newHarness(t *testing.T, handler http.Handler) *testHarness {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := logger.New("test")
	client := upstream.New(upstreamTestConfig{baseURL: server.URL}, log)
	queue := &fakeQueue{}

	svc := NewService(
		store.NewDraftStore(rdb, time.Hour),
		store.NewSnapshotCache(rdb, time.Hour),
		store.NewListingCache(rdb, time.Hour),
		client,
		queue,
		nil,
		log,
	)

	return &testHarness{svc: svc, server: server, redis: mr, queue: queue}
}

func writeEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "ok", "data": data})
}

func completeClientInfo() domain.ClientInfo {
	return domain.ClientInfo{
		FirstName:   "Avery",
		Address:     "12 King St",
		City:        "Barrie",
		Province:    "ON",
		PostalCode:  "L4M 1A1",
		PhoneNumber: "705-555-0101",
	}
}

func TestDraftLineFlow(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quote/calculate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeEnvelope(w, map[string]any{
			"services": []map[string]any{{
				"serviceType": "EXTERIOR_WINDOW_CLEANING",
				"totalCost":   120.0,
			}},
		})
	}))
	ctx := context.Background()

	draftView, err := h.svc.CreateDraft(ctx, "user-1")
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}
	draftID := draftView.Draft.ID

	if _, err := h.svc.EditorBegin(ctx, "user-1", draftID, domain.ExteriorWindowCleaning); err != nil {
		t.Fatalf("EditorBegin: %v", err)
	}
	if _, err := h.svc.EditorSetUnits(ctx, "user-1", draftID, 14); err != nil {
		t.Fatalf("EditorSetUnits: %v", err)
	}

	draftView, err = h.svc.EditorSubmit(ctx, "user-1", draftID)
	if err != nil {
		t.Fatalf("EditorSubmit: %v", err)
	}
	if len(draftView.Draft.Lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(draftView.Draft.Lines))
	}
	if draftView.Draft.Lines[0].Subtotal != 120 {
		t.Errorf("line subtotal = %v, want 120", draftView.Draft.Lines[0].Subtotal)
	}
	if draftView.Totals.Subtotal != 120 {
		t.Errorf("draft subtotal = %v, want 120", draftView.Totals.Subtotal)
	}

	// State survives a reload.
	reloaded, err := h.svc.GetDraft(ctx, "user-1", draftID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if len(reloaded.Draft.Lines) != 1 {
		t.Fatalf("reloaded lines = %d, want 1", len(reloaded.Draft.Lines))
	}
}

func TestEditorSubmitFailureKeepsInputs(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	ctx := context.Background()

	draftView, _ := h.svc.CreateDraft(ctx, "user-1")
	draftID := draftView.Draft.ID
	_, _ = h.svc.EditorBegin(ctx, "user-1", draftID, domain.ExteriorWindowCleaning)
	_, _ = h.svc.EditorSetUnits(ctx, "user-1", draftID, 9)

	if _, err := h.svc.EditorSubmit(ctx, "user-1", draftID); !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("err = %v, want unavailable", err)
	}

	// The saved editor is back in filling with the units intact.
	reloaded, err := h.svc.GetDraft(ctx, "user-1", draftID)
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if reloaded.Editor.Form.Units != 9 {
		t.Errorf("units = %v, want 9 preserved after failure", reloaded.Editor.Form.Units)
	}
	if len(reloaded.Draft.Lines) != 0 {
		t.Errorf("lines = %d, want 0 after failed pricing", len(reloaded.Draft.Lines))
	}
}

func TestSubmitDraftRejectsIncomplete(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected for an invalid draft")
	}))
	ctx := context.Background()

	draftView, _ := h.svc.CreateDraft(ctx, "user-1")

	_, err := h.svc.SubmitDraft(ctx, "user-1", draftView.Draft.ID)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Details == nil {
		t.Fatalf("expected rule violations in details, got %#v", err)
	}
}

func TestSubmitDraftCreatesAndCleansUp(t *testing.T) {
	var gotPath string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeEnvelope(w, domain.Quote{ID: "q-1", Invoice: "0042", Status: domain.QuoteStatusPending})
	}))
	ctx := context.Background()

	draftView, _ := h.svc.CreateDraft(ctx, "user-1")
	draftID := draftView.Draft.ID
	if _, err := h.svc.UpdateClientInfo(ctx, "user-1", draftID, completeClientInfo()); err != nil {
		t.Fatalf("UpdateClientInfo: %v", err)
	}
	// Plant a priced line directly to keep the fake upstream simple.
	state, _ := h.svc.drafts.Get(ctx, "user-1", draftID)
	state.Draft.AddOrReplaceLine(domain.ServiceLine{
		ServiceType: domain.ExteriorWindowCleaning,
		Units:       10,
		Subtotal:    100,
	}, nil)
	if err := h.svc.drafts.Save(ctx, "user-1", state); err != nil {
		t.Fatalf("Save: %v", err)
	}

	quote, err := h.svc.SubmitDraft(ctx, "user-1", draftID)
	if err != nil {
		t.Fatalf("SubmitDraft: %v", err)
	}
	if gotPath != "/quote/create" {
		t.Errorf("path = %s, want /quote/create", gotPath)
	}
	if quote.ID != "q-1" {
		t.Errorf("quote id = %s", quote.ID)
	}

	// The draft is gone and the quote is snapshotted.
	if _, err := h.svc.GetDraft(ctx, "user-1", draftID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("draft after submit: err = %v, want not found", err)
	}
	if _, err := h.svc.snapshots.Get(ctx, "q-1"); err != nil {
		t.Errorf("snapshot after submit: %v", err)
	}
}

func TestSubmitDraftFromQuoteUpdates(t *testing.T) {
	var gotPath string
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeEnvelope(w, domain.Quote{
			ID:         "q-7",
			ClientInfo: completeClientInfo(),
			Services: []domain.ServiceLine{{
				ServiceType: domain.ExteriorWindowCleaning,
				Units:       10,
				Subtotal:    100,
			}},
		})
	}))
	ctx := context.Background()

	draftView, err := h.svc.EditQuote(ctx, "user-1", "q-7")
	if err != nil {
		t.Fatalf("EditQuote: %v", err)
	}
	if draftView.Draft.QuoteID != "q-7" {
		t.Fatalf("draft quoteId = %q, want q-7", draftView.Draft.QuoteID)
	}

	if _, err := h.svc.SubmitDraft(ctx, "user-1", draftView.Draft.ID); err != nil {
		t.Fatalf("SubmitDraft: %v", err)
	}
	if gotPath != "/quote/update/q-7" {
		t.Errorf("path = %s, want /quote/update/q-7", gotPath)
	}
}

func TestGetQuoteFallsBackToSnapshot(t *testing.T) {
	down := false
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if down {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeEnvelope(w, domain.Quote{ID: "q-9", Invoice: "0009"})
	}))
	ctx := context.Background()

	// First fetch populates the snapshot.
	if _, stale, err := h.svc.GetQuote(ctx, "q-9"); err != nil || stale {
		t.Fatalf("first fetch: stale=%v err=%v", stale, err)
	}

	down = true
	quote, stale, err := h.svc.GetQuote(ctx, "q-9")
	if err != nil {
		t.Fatalf("fallback fetch: %v", err)
	}
	if !stale {
		t.Error("expected the fallback to be flagged stale")
	}
	if quote.Invoice != "0009" {
		t.Errorf("invoice = %q", quote.Invoice)
	}

	// No snapshot means the outage surfaces.
	if _, _, err := h.svc.GetQuote(ctx, "q-unknown"); !apperr.Is(err, apperr.KindUnavailable) {
		t.Errorf("err = %v, want unavailable", err)
	}
}

func TestListQuotesAccumulatesPages(t *testing.T) {
	pages := map[string][]domain.Quote{
		"1": {{ID: "a"}, {ID: "b"}},
		// Quote "b" slid onto page two after an insert upstream.
		"2": {{ID: "b"}, {ID: "c"}},
	}
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, pages[r.URL.Query().Get("page")])
	}))
	ctx := context.Background()

	first, err := h.svc.ListQuotes(ctx, "user-1", ListParams{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if len(first.Quotes) != 2 || !first.HasMore {
		t.Fatalf("page 1: %d quotes, hasMore=%v", len(first.Quotes), first.HasMore)
	}

	second, err := h.svc.ListQuotes(ctx, "user-1", ListParams{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	ids := make([]string, 0, len(second.Quotes))
	for _, q := range second.Quotes {
		ids = append(ids, q.ID)
	}
	if fmt.Sprint(ids) != "[a b c]" {
		t.Errorf("accumulated ids = %v, want [a b c]", ids)
	}

	// Page one again restarts the accumulation.
	restart, err := h.svc.ListQuotes(ctx, "user-1", ListParams{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if len(restart.Quotes) != 2 {
		t.Errorf("restart quotes = %d, want 2", len(restart.Quotes))
	}
}

func TestDeleteQuoteDropsSnapshot(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, domain.Quote{ID: "q-3"})
	}))
	ctx := context.Background()

	if _, _, err := h.svc.GetQuote(ctx, "q-3"); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
	if err := h.svc.DeleteQuote(ctx, "q-3"); err != nil {
		t.Fatalf("DeleteQuote: %v", err)
	}
	if _, err := h.svc.snapshots.Get(ctx, "q-3"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("snapshot after delete: err = %v, want not found", err)
	}
}

func TestSendInvoiceCarriesSessionID(t *testing.T) {
	h := newHarness(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	ctx := sessionContext(context.Background(), "sess-42")
	if err := h.svc.SendInvoice(ctx, "q-5"); err != nil {
		t.Fatalf("SendInvoice: %v", err)
	}
	if len(h.queue.payloads) != 1 {
		t.Fatalf("enqueued = %d, want 1", len(h.queue.payloads))
	}
	got := h.queue.payloads[0]
	if got.QuoteID != "q-5" || got.SessionID != "sess-42" {
		t.Errorf("payload = %+v", got)
	}
}
