package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

const snapshotKeyPrefix = "portal:quote:snapshot:"

// SnapshotCache remembers the last fetched copy of each quote. Invoice
// rendering reads from here when the quote service is unreachable, so a
// quote that was just on screen can still be printed.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSnapshotCache creates a snapshot cache.
func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{rdb: rdb, ttl: ttl}
}

// Put stores the latest copy of a quote.
func (c *SnapshotCache) Put(ctx context.Context, quote domain.Quote) error {
	raw, err := json.Marshal(quote)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode snapshot", err)
	}
	if err := c.rdb.Set(ctx, snapshotKeyPrefix+quote.ID, raw, c.ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "store snapshot", err)
	}
	return nil
}

// Get returns the cached copy of a quote.
func (c *SnapshotCache) Get(ctx context.Context, quoteID string) (domain.Quote, error) {
	raw, err := c.rdb.Get(ctx, snapshotKeyPrefix+quoteID).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Quote{}, apperr.NotFound("no cached copy of quote")
	}
	if err != nil {
		return domain.Quote{}, apperr.Wrap(apperr.KindInternal, "load snapshot", err)
	}

	var quote domain.Quote
	if err := json.Unmarshal(raw, &quote); err != nil {
		return domain.Quote{}, apperr.Wrap(apperr.KindInternal, "decode snapshot", err)
	}
	return quote, nil
}

// Drop removes the cached copy, typically after the quote is deleted.
func (c *SnapshotCache) Drop(ctx context.Context, quoteID string) error {
	if err := c.rdb.Del(ctx, snapshotKeyPrefix+quoteID).Err(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "drop snapshot", err)
	}
	return nil
}
