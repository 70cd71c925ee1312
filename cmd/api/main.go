package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"simcoe_portal/internal/auth"
	"simcoe_portal/internal/email"
	apphttp "simcoe_portal/internal/http"
	"simcoe_portal/internal/http/router"
	"simcoe_portal/internal/quotes"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/scheduler"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/storage"
	"simcoe_portal/internal/tariffs"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/internal/users"
	"simcoe_portal/platform/config"
	"simcoe_portal/platform/logger"
	"simcoe_portal/platform/validator"
)

// redisHealth adapts the Redis client to the readiness check.
type redisHealth struct {
	rdb *redis.Client
}

func (h redisHealth) Ping(ctx context.Context) error {
	return h.rdb.Ping(ctx).Err()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting portal", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	redisOpt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Error("invalid redis url", "error", err)
		panic("invalid redis url: " + err.Error())
	}
	rdb := redis.NewClient(redisOpt)
	defer func() { _ = rdb.Close() }()

	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	log.Info("redis connection established")

	client := upstream.New(cfg, log)

	var archive *storage.Archive
	if cfg.IsMinIOEnabled() {
		archive, err = storage.New(cfg)
		if err != nil {
			log.Error("failed to initialize invoice archive", "error", err)
			panic("failed to initialize invoice archive: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure invoice bucket", 5, 2*time.Second, func() error {
			return archive.EnsureBucket(ctx)
		}); err != nil {
			log.Error("failed to ensure invoice bucket", "error", err, "bucket", cfg.MinioBucketInvoicePDFs)
			panic("failed to ensure invoice bucket: " + err.Error())
		}
		log.Info("invoice archive initialized", "bucket", cfg.MinioBucketInvoicePDFs)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; invoice archive disabled")
	}

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	sessions := session.NewService(session.NewStore(rdb, cfg.SessionTTL), client, cfg, log)

	// An upstream 401 means the stored token went bad; tear the session
	// down so the next request forces a fresh login.
	client.SetOnUnauthorized(sessions.Teardown)

	// Invoice delivery: queue client for enqueuing plus an in-process
	// worker. cmd/worker runs the same worker standalone when delivery
	// needs to scale separately.
	var invoiceQueue scheduler.InvoiceScheduler
	var invoiceWorker *scheduler.Worker
	if cfg.EmailEnabled {
		queueClient, err := scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize invoice queue", "error", err)
			panic("failed to initialize invoice queue: " + err.Error())
		}
		defer func() { _ = queueClient.Close() }()
		invoiceQueue = queueClient

		invoiceWorker, err = scheduler.NewWorker(
			cfg,
			sessions,
			client,
			store.NewSnapshotCache(rdb, store.DefaultSnapshotTTL),
			email.NewSMTPSender(cfg),
			archive,
			log,
		)
		if err != nil {
			log.Error("failed to initialize invoice worker", "error", err)
			panic("failed to initialize invoice worker: " + err.Error())
		}
	} else {
		log.Warn("email not configured; invoice delivery disabled")
	}

	authModule := auth.NewModule(sessions, val)
	quotesModule := quotes.NewModule(rdb, client, sessions, invoiceQueue, archive, val, log)
	usersModule := users.NewModule(client, sessions, val)
	tariffsModule := tariffs.NewModule(client, sessions, val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: redisHealth{rdb: rdb},
		Modules: []apphttp.Module{
			authModule,
			quotesModule,
			usersModule,
			tariffsModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: engine}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if invoiceWorker != nil {
		group.Go(func() error {
			return invoiceWorker.Run(groupCtx)
		})
	}

	if err := group.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	return fmt.Errorf("%s: %w", name, lastErr)
}
