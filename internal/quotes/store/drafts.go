// Package store keeps the portal's own quote state in Redis: in-progress
// drafts with their line editors, the last-viewed snapshot of each
// persisted quote, and the accumulated listing pages. Everything here is
// cache or work-in-progress; the quote service remains the system of
// record.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/quotes/builder"
	"simcoe_portal/internal/quotes/editor"
	"simcoe_portal/platform/apperr"
)

const draftKeyPrefix = "portal:draft:"

// Default retention for each store. Drafts survive a work week of
// inactivity, snapshots outlive the listing cache by far because they
// back the offline view and invoice delivery.
const (
	DefaultDraftTTL    = 7 * 24 * time.Hour
	DefaultSnapshotTTL = 30 * 24 * time.Hour
	DefaultListingTTL  = 15 * time.Minute
)

// DraftState bundles a draft with its line editor so both survive
// between requests as one unit.
type DraftState struct {
	Draft  builder.Draft `json:"draft"`
	Editor editor.Editor `json:"editor"`
}

// DraftStore persists draft state per user.
type DraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewDraftStore creates a draft store. Drafts idle longer than ttl are
// dropped.
func NewDraftStore(rdb *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(userID, draftID string) string {
	return draftKeyPrefix + userID + ":" + draftID
}

// Save writes the draft state, resetting its idle TTL.
func (s *DraftStore) Save(ctx context.Context, userID string, state DraftState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode draft", err)
	}
	if err := s.rdb.Set(ctx, draftKey(userID, state.Draft.ID), raw, s.ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "store draft", err)
	}
	return nil
}

// Get loads a draft owned by userID.
func (s *DraftStore) Get(ctx context.Context, userID, draftID string) (DraftState, error) {
	raw, err := s.rdb.Get(ctx, draftKey(userID, draftID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return DraftState{}, apperr.NotFound("draft not found")
	}
	if err != nil {
		return DraftState{}, apperr.Wrap(apperr.KindInternal, "load draft", err)
	}

	var state DraftState
	if err := json.Unmarshal(raw, &state); err != nil {
		return DraftState{}, apperr.Wrap(apperr.KindInternal, "decode draft", err)
	}
	return state, nil
}

// Delete removes a draft. Absent drafts are not an error.
func (s *DraftStore) Delete(ctx context.Context, userID, draftID string) error {
	if err := s.rdb.Del(ctx, draftKey(userID, draftID)).Err(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete draft", err)
	}
	return nil
}
