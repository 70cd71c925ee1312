// Package service wires the draft builder, the line editor, the Redis
// caches, and the remote quote client into the operations the portal's
// quote endpoints expose. All pricing and persistence happens upstream;
// this layer owns the in-progress state and the offline fallbacks.
package service

import (
	"context"

	"github.com/google/uuid"

	"simcoe_portal/internal/quotes/builder"
	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/quotes/editor"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/scheduler"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/storage"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/apperr"
	"simcoe_portal/platform/logger"
	"simcoe_portal/platform/phone"
)

// Service implements the portal-side quote operations.
type Service struct {
	drafts    *store.DraftStore
	snapshots *store.SnapshotCache
	listings  *store.ListingCache
	client    *upstream.Client
	scheduler scheduler.InvoiceScheduler
	archive   *storage.Archive // nil when MinIO is disabled
	log       *logger.Logger
}

// NewService creates the quote service. archive may be nil.
func NewService(
	drafts *store.DraftStore,
	snapshots *store.SnapshotCache,
	listings *store.ListingCache,
	client *upstream.Client,
	sched scheduler.InvoiceScheduler,
	archive *storage.Archive,
	log *logger.Logger,
) *Service {
	return &Service{
		drafts:    drafts,
		snapshots: snapshots,
		listings:  listings,
		client:    client,
		scheduler: sched,
		archive:   archive,
		log:       log,
	}
}

// DraftView is a draft with its derived state, as every draft endpoint
// returns it: the client sees totals and validation on each mutation
// without a second round trip.
type DraftView struct {
	Draft      builder.Draft            `json:"draft"`
	Editor     editor.Editor            `json:"editor"`
	Totals     builder.Totals           `json:"totals"`
	Validation builder.ValidationResult `json:"validation"`
}

func view(state store.DraftState) DraftView {
	return DraftView{
		Draft:      state.Draft,
		Editor:     state.Editor,
		Totals:     state.Draft.ComputeTotals(),
		Validation: state.Draft.Validate(),
	}
}

// CreateDraft opens an empty draft for a brand-new quote.
func (s *Service) CreateDraft(ctx context.Context, userID string) (DraftView, error) {
	state := store.DraftState{
		Draft:  *builder.New(uuid.New().String()),
		Editor: *editor.New(),
	}
	if err := s.drafts.Save(ctx, userID, state); err != nil {
		return DraftView{}, err
	}
	return view(state), nil
}

// EditQuote opens a draft seeded from a persisted quote. The fetched
// quote is snapshotted so the invoice worker and the offline view have a
// copy even if the quote service goes away mid-edit.
func (s *Service) EditQuote(ctx context.Context, userID, quoteID string) (DraftView, error) {
	quote, _, err := s.GetQuote(ctx, quoteID)
	if err != nil {
		return DraftView{}, err
	}

	state := store.DraftState{
		Draft:  *builder.FromQuote(uuid.New().String(), quote),
		Editor: *editor.New(),
	}
	if err := s.drafts.Save(ctx, userID, state); err != nil {
		return DraftView{}, err
	}
	return view(state), nil
}

// GetDraft returns the draft with recomputed totals and validation.
func (s *Service) GetDraft(ctx context.Context, userID, draftID string) (DraftView, error) {
	state, err := s.drafts.Get(ctx, userID, draftID)
	if err != nil {
		return DraftView{}, err
	}
	return view(state), nil
}

// DiscardDraft drops the draft. Discarding a draft that is already gone
// is not an error.
func (s *Service) DiscardDraft(ctx context.Context, userID, draftID string) error {
	return s.drafts.Delete(ctx, userID, draftID)
}

// mutate loads the draft state, applies fn, and saves the result.
func (s *Service) mutate(ctx context.Context, userID, draftID string, fn func(*store.DraftState) error) (DraftView, error) {
	state, err := s.drafts.Get(ctx, userID, draftID)
	if err != nil {
		return DraftView{}, err
	}
	if err := fn(&state); err != nil {
		return DraftView{}, err
	}
	if err := s.drafts.Save(ctx, userID, state); err != nil {
		return DraftView{}, err
	}
	return view(state), nil
}

// UpdateClientInfo replaces the draft's client details. A recognizable
// Canadian phone number is normalized to its national display form; any
// other input is kept as typed.
func (s *Service) UpdateClientInfo(ctx context.Context, userID, draftID string, info domain.ClientInfo) (DraftView, error) {
	if phone.IsValid(info.PhoneNumber) {
		info.PhoneNumber = phone.Display(info.PhoneNumber)
	}
	if info.OtherPhone != "" && phone.IsValid(info.OtherPhone) {
		info.OtherPhone = phone.Display(info.OtherPhone)
	}
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		state.Draft.ClientInfo = info
		return nil
	})
}

// SetDiscount applies a flat or percentage discount to the draft.
func (s *Service) SetDiscount(ctx context.Context, userID, draftID string, discountType domain.DiscountType, value float64) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		return state.Draft.SetDiscount(discountType, value)
	})
}

// RemoveLine deletes the line at index from the draft.
func (s *Service) RemoveLine(ctx context.Context, userID, draftID string, index int) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		state.Draft.RemoveLine(index)
		return nil
	})
}

// EditorBegin starts a new service line.
func (s *Service) EditorBegin(ctx context.Context, userID, draftID string, serviceType domain.ServiceType) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		return state.Editor.Begin(serviceType)
	})
}

// EditorBeginEdit loads an existing line into the editor for in-place
// replacement.
func (s *Service) EditorBeginEdit(ctx context.Context, userID, draftID string, index int) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		if index < 0 || index >= len(state.Draft.Lines) {
			return apperr.NotFound("no service line at that position")
		}
		return state.Editor.BeginEdit(index, state.Draft.Lines[index])
	})
}

// EditorSetServiceType switches the line's service type.
func (s *Service) EditorSetServiceType(ctx context.Context, userID, draftID string, serviceType domain.ServiceType) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		return state.Editor.SetServiceType(serviceType)
	})
}

// EditorSetUnits records the unit count for the line being filled.
func (s *Service) EditorSetUnits(ctx context.Context, userID, draftID string, units float64) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		return state.Editor.SetUnits(units)
	})
}

// EditorSetMeasurements records the deck measurements for the line being
// filled.
func (s *Service) EditorSetMeasurements(ctx context.Context, userID, draftID string, m domain.WoodMeasurements) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		return state.Editor.SetMeasurements(m)
	})
}

// EditorCancel abandons the line being filled.
func (s *Service) EditorCancel(ctx context.Context, userID, draftID string) (DraftView, error) {
	return s.mutate(ctx, userID, draftID, func(state *store.DraftState) error {
		state.Editor.Cancel()
		return nil
	})
}

// EditorSubmit prices the filled line upstream and commits it to the
// draft. A pricing failure leaves the editor filling with its inputs
// intact; the saved state reflects that so a retry picks up where the
// failure happened.
func (s *Service) EditorSubmit(ctx context.Context, userID, draftID string) (DraftView, error) {
	state, err := s.drafts.Get(ctx, userID, draftID)
	if err != nil {
		return DraftView{}, err
	}

	result, submitErr := state.Editor.Submit(ctx, s.client)
	if submitErr == nil {
		state.Draft.AddOrReplaceLine(result.Line, result.EditingIndex)
	}
	if err := s.drafts.Save(ctx, userID, state); err != nil {
		return DraftView{}, err
	}
	if submitErr != nil {
		return DraftView{}, submitErr
	}
	return view(state), nil
}

// SubmitDraft validates the draft and persists it upstream: a create for
// a fresh draft, a full replace when the draft was opened from an
// existing quote. On success the draft is gone and the persisted quote is
// snapshotted.
func (s *Service) SubmitDraft(ctx context.Context, userID, draftID string) (domain.Quote, error) {
	state, err := s.drafts.Get(ctx, userID, draftID)
	if err != nil {
		return domain.Quote{}, err
	}

	if result := state.Draft.Validate(); !result.IsValid {
		return domain.Quote{}, apperr.Validation("quote is not ready to submit").WithDetails(result.Errors)
	}

	payload := state.Draft.PersistablePayload(userID)

	var quote domain.Quote
	if state.Draft.QuoteID != "" {
		quote, err = s.client.UpdateQuote(ctx, state.Draft.QuoteID, payload)
	} else {
		quote, err = s.client.CreateQuote(ctx, payload)
	}
	if err != nil {
		return domain.Quote{}, err
	}

	if err := s.drafts.Delete(ctx, userID, draftID); err != nil {
		s.log.Warn("draft cleanup after submit failed", "draftId", draftID, "error", err)
	}
	if err := s.snapshots.Put(ctx, quote); err != nil {
		s.log.Warn("quote snapshot failed", "quoteId", quote.ID, "error", err)
	}

	return quote, nil
}

// GetQuote fetches a quote from the quote service and refreshes its
// snapshot. When the quote service is unreachable the last snapshot is
// served instead, flagged stale. A 404 also falls back: a just-created
// quote can lag behind in the upstream's reads.
func (s *Service) GetQuote(ctx context.Context, quoteID string) (domain.Quote, bool, error) {
	quote, err := s.client.GetQuote(ctx, quoteID)
	if err != nil {
		if apperr.Is(err, apperr.KindUnavailable) || apperr.Is(err, apperr.KindNotFound) {
			cached, cacheErr := s.snapshots.Get(ctx, quoteID)
			if cacheErr == nil {
				s.log.Warn("serving stale quote snapshot", "quoteId", quoteID)
				return cached, true, nil
			}
		}
		return domain.Quote{}, false, err
	}

	if err := s.snapshots.Put(ctx, quote); err != nil {
		s.log.Warn("quote snapshot failed", "quoteId", quote.ID, "error", err)
	}
	return quote, false, nil
}

// ListParams selects a page of the quote list.
type ListParams struct {
	Page   int
	Limit  int
	Text   string
	UserID string
}

// ListResult is one accumulated page of the quote list. Quotes holds
// every entry fetched so far for this filter, de-duplicated by id.
type ListResult struct {
	Quotes  []domain.Quote `json:"quotes"`
	HasMore bool           `json:"hasMore"`
}

// ListQuotes proxies the paged list and accumulates pages per filter, so
// scrolling never shows the same quote twice even when the upstream page
// boundaries shift between requests.
func (s *Service) ListQuotes(ctx context.Context, ownerID string, params ListParams) (ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 10
	}

	filterKey := store.FilterKey(params.Text, params.UserID)
	if params.Page == 1 {
		if err := s.listings.Reset(ctx, ownerID, filterKey); err != nil {
			return ListResult{}, err
		}
	}

	page, err := s.client.ListQuotes(ctx, upstream.ListFilter{
		Page:   params.Page,
		Limit:  params.Limit,
		Text:   params.Text,
		UserID: params.UserID,
	})
	if err != nil {
		return ListResult{}, err
	}

	merged, err := s.listings.Append(ctx, ownerID, filterKey, page)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{Quotes: merged, HasMore: len(page) == params.Limit}, nil
}

// SetStatus patches the quote's status and refreshes its snapshot.
func (s *Service) SetStatus(ctx context.Context, quoteID string, status domain.QuoteStatus) (domain.Quote, error) {
	quote, err := s.client.SetQuoteStatus(ctx, quoteID, status)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := s.snapshots.Put(ctx, quote); err != nil {
		s.log.Warn("quote snapshot failed", "quoteId", quote.ID, "error", err)
	}
	return quote, nil
}

// DeleteQuote removes the quote upstream and drops the portal's cached
// copies of it.
func (s *Service) DeleteQuote(ctx context.Context, quoteID string) error {
	if err := s.client.DeleteQuote(ctx, quoteID); err != nil {
		return err
	}
	if err := s.snapshots.Drop(ctx, quoteID); err != nil {
		s.log.Warn("snapshot drop failed", "quoteId", quoteID, "error", err)
	}
	if s.archive != nil {
		if err := s.archive.Drop(ctx, quoteID); err != nil {
			s.log.Warn("archived invoice drop failed", "quoteId", quoteID, "error", err)
		}
	}
	return nil
}

// SendInvoice queues the invoice email for the quote. The session id
// rides along so the worker can fetch the quote with the caller's
// upstream credentials.
func (s *Service) SendInvoice(ctx context.Context, quoteID string) error {
	if s.scheduler == nil {
		return apperr.Unavailable("invoice delivery is not configured")
	}
	return s.scheduler.EnqueueInvoiceDelivery(ctx, scheduler.InvoiceDeliverPayload{
		QuoteID:   quoteID,
		SessionID: session.IDFromContext(ctx),
	})
}
