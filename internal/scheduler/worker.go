// Package scheduler runs the portal's background work on asynq. The only
// task today is invoice delivery: render the quote's PDF, email it to the
// client, and archive the bytes when MinIO is configured.
package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"simcoe_portal/internal/email"
	"simcoe_portal/internal/pdf"
	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/storage"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/apperr"
	"simcoe_portal/platform/config"
	"simcoe_portal/platform/logger"
)

// Worker consumes background tasks.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	sessions  *session.Service
	client    *upstream.Client
	snapshots *store.SnapshotCache
	sender    email.Sender
	archive   *storage.Archive // nil when MinIO is not configured
	log       *logger.Logger
}

// NewWorker builds the asynq server and registers handlers. archive may
// be nil.
func NewWorker(
	cfg config.RedisConfig,
	sessions *session.Service,
	client *upstream.Client,
	snapshots *store.SnapshotCache,
	sender email.Sender,
	archive *storage.Archive,
	log *logger.Logger,
) (*Worker, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}
	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		sessions:  sessions,
		client:    client,
		snapshots: snapshots,
		sender:    sender,
		archive:   archive,
		log:       log,
	}
	mux.HandleFunc(TaskInvoiceDeliver, w.handleInvoiceDeliver)

	return w, nil
}

// Run blocks serving tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()
	return w.server.Run(w.mux)
}

func (w *Worker) handleInvoiceDeliver(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseInvoiceDeliverPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	quote, err := w.loadQuote(ctx, payload)
	if err != nil {
		w.log.Error("invoice delivery: load quote failed", "quote_id", payload.QuoteID, "error", err)
		return err
	}
	if quote.ClientInfo.Email == "" {
		w.log.Warn("invoice delivery skipped: no client email", "quote_id", quote.ID)
		return nil
	}

	raw, err := pdf.GenerateInvoicePDF(quote)
	if err != nil {
		return err
	}
	filename := pdf.Filename(quote, quote.CreatedAt)

	if err := w.sender.SendInvoice(ctx, quote, raw, filename); err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
		}
		return err
	}

	if w.archive != nil {
		if err := w.archive.Put(ctx, quote.ID, raw); err != nil {
			// Delivery succeeded; don't redeliver just to archive.
			w.log.Error("invoice archive failed", "quote_id", quote.ID, "error", err)
		}
	}

	w.log.Info("invoice delivered", "quote_id", quote.ID, "to", quote.ClientInfo.Email)
	return nil
}

// loadQuote prefers a fresh copy via the requesting user's session and
// falls back to the cached snapshot when the session or the quote
// service is gone.
func (w *Worker) loadQuote(ctx context.Context, payload InvoiceDeliverPayload) (domain.Quote, error) {
	if payload.SessionID != "" {
		if sess, err := w.sessions.Resolve(ctx, payload.SessionID); err == nil {
			callCtx := upstream.ContextWithToken(ctx, sess.UpstreamToken)
			callCtx = session.ContextWithID(callCtx, sess.ID)
			if quote, err := w.client.GetQuote(callCtx, payload.QuoteID); err == nil {
				return quote, nil
			}
		}
	}
	return w.snapshots.Get(ctx, payload.QuoteID)
}
