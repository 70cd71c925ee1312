package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/email"
	"simcoe_portal/internal/quotes/store"
	"simcoe_portal/internal/scheduler"
	"simcoe_portal/internal/session"
	"simcoe_portal/internal/storage"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/config"
	"simcoe_portal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting invoice worker", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !cfg.EmailEnabled {
		log.Error("email not configured; invoice worker has nothing to do")
		panic("email not configured")
	}

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

	client := upstream.New(cfg, log)
	sessions := session.NewService(session.NewStore(rdb, cfg.SessionTTL), client, cfg, log)

	var archive *storage.Archive
	if cfg.IsMinIOEnabled() {
		archive, err = storage.New(cfg)
		if err != nil {
			log.Error("failed to initialize invoice archive", "error", err)
			panic("failed to initialize invoice archive: " + err.Error())
		}
	}

	worker, err := scheduler.NewWorker(
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

	if err := worker.Run(ctx); err != nil {
		log.Error("invoice worker stopped", "error", err)
		panic("invoice worker stopped: " + err.Error())
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
