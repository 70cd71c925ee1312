package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

const listingKeyPrefix = "portal:quotelist:"

// ListingCache accumulates the pages of an infinite-scroll quote listing
// per user and filter. Pages from the quote service can overlap when
// rows shift between requests, so appending de-duplicates by quote id
// while keeping the first-seen order.
type ListingCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewListingCache creates a listing cache.
func NewListingCache(rdb *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{rdb: rdb, ttl: ttl}
}

// FilterKey derives a stable cache key for one search filter.
func FilterKey(text, userID string) string {
	sum := sha256.Sum256([]byte(text + "\x00" + userID))
	return hex.EncodeToString(sum[:8])
}

func listingKey(ownerID, filterKey string) string {
	return listingKeyPrefix + ownerID + ":" + filterKey
}

// Reset clears the accumulated listing, for a fresh first page.
func (c *ListingCache) Reset(ctx context.Context, ownerID, filterKey string) error {
	if err := c.rdb.Del(ctx, listingKey(ownerID, filterKey)).Err(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "reset listing", err)
	}
	return nil
}

// Append merges one fetched page into the accumulated listing and
// returns the full merged slice.
func (c *ListingCache) Append(ctx context.Context, ownerID, filterKey string, page []domain.Quote) ([]domain.Quote, error) {
	key := listingKey(ownerID, filterKey)

	var existing []domain.Quote
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		// first page
	case err != nil:
		return nil, apperr.Wrap(apperr.KindInternal, "load listing", err)
	default:
		if err := json.Unmarshal(raw, &existing); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "decode listing", err)
		}
	}

	merged := MergePage(existing, page)

	out, err := json.Marshal(merged)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "encode listing", err)
	}
	if err := c.rdb.Set(ctx, key, out, c.ttl).Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "store listing", err)
	}
	return merged, nil
}

// MergePage appends page onto existing, skipping quotes already present.
func MergePage(existing, page []domain.Quote) []domain.Quote {
	seen := make(map[string]struct{}, len(existing))
	for _, q := range existing {
		seen[q.ID] = struct{}{}
	}

	merged := existing
	for _, q := range page {
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		merged = append(merged, q)
	}
	return merged
}
