package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"simcoe_portal/platform/config"
)

// Client enqueues background tasks.
type Client struct {
	client *asynq.Client
	queue  string
}

// InvoiceScheduler is the narrow interface handed to the quotes module.
type InvoiceScheduler interface {
	EnqueueInvoiceDelivery(ctx context.Context, payload InvoiceDeliverPayload) error
}

// NewClient creates the task queue client.
func NewClient(cfg config.RedisConfig) (*Client, error) {
	opt, err := redisClientOpt(cfg.GetRedisURL())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	return &Client{client: asynq.NewClient(opt), queue: queue}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueInvoiceDelivery queues one invoice for rendering and emailing.
func (c *Client) EnqueueInvoiceDelivery(ctx context.Context, payload InvoiceDeliverPayload) error {
	task, err := NewInvoiceDeliverTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.EnqueueContext(ctx, task, asynq.Queue(c.queue), asynq.MaxRetry(5))
	return err
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	if redisURL == "" {
		return asynq.RedisClientOpt{}, fmt.Errorf("redis url not configured")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, fmt.Errorf("parse redis url: %w", err)
	}
	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}
