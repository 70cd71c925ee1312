// Package session owns the portal's login state. A session pairs the
// portal's own access token with the upstream bearer token obtained at
// login; the upstream token never leaves the server. Sessions live in
// Redis so any portal instance can serve any request.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/platform/apperr"
)

const keyPrefix = "portal:session:"

// Session is one authenticated login.
type Session struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Role          string      `json:"role"`
	UpstreamToken string      `json:"upstreamToken"`
	User          domain.User `json:"user"`
	CreatedAt     time.Time   `json:"createdAt"`
	ExpiresAt     time.Time   `json:"expiresAt"`
}

type sessionIDKey struct{}

// ContextWithID attaches the current session id to the context so the
// forced-logout hook can find the session to tear down.
func ContextWithID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

// IDFromContext returns the session id set by the middleware, or "".
func IDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey{}).(string)
	return id
}

// Store keeps sessions in Redis with the configured TTL.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a session store.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Save writes the session, resetting its TTL.
func (s *Store) Save(ctx context.Context, sess Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "encode session", err)
	}
	if err := s.rdb.Set(ctx, keyPrefix+sess.ID, raw, s.ttl).Err(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "store session", err)
	}
	return nil
}

// Get loads a session. A missing or expired session maps to an
// unauthorized error so callers fall through to the login flow.
func (s *Store) Get(ctx context.Context, sessionID string) (Session, error) {
	raw, err := s.rdb.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, apperr.Unauthorized("session expired")
	}
	if err != nil {
		return Session{}, apperr.Wrap(apperr.KindInternal, "load session", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return Session{}, apperr.Wrap(apperr.KindInternal, "decode session", err)
	}
	return sess, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete session", err)
	}
	return nil
}
