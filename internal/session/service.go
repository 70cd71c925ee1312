package session

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"simcoe_portal/internal/quotes/domain"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/apperr"
	"simcoe_portal/platform/config"
	"simcoe_portal/platform/logger"
)

// Service runs the login flows. Credentials are only ever verified by the
// quote service; the portal mints its own short-lived access token and
// keeps the upstream bearer token inside the session.
type Service struct {
	store  *Store
	client *upstream.Client
	cfg    config.SessionConfig
	log    *logger.Logger
}

// NewService creates the session service.
func NewService(store *Store, client *upstream.Client, cfg config.SessionConfig, log *logger.Logger) *Service {
	return &Service{store: store, client: client, cfg: cfg, log: log}
}

// AuthResult is what a successful login hands to the browser: the portal
// access token and the authenticated user.
type AuthResult struct {
	AccessToken string      `json:"accessToken"`
	User        domain.User `json:"user"`
}

// Login verifies credentials against the quote service and opens a
// session.
func (s *Service) Login(ctx context.Context, email, password string) (AuthResult, error) {
	result, err := s.client.Login(ctx, email, password)
	if err != nil {
		s.log.AuthEvent("login", email, false, err.Error())
		return AuthResult{}, err
	}
	return s.open(ctx, result)
}

// SendOTP relays a one-time-code request to the quote service.
func (s *Service) SendOTP(ctx context.Context, phoneNumber string) error {
	return s.client.SendOTP(ctx, phoneNumber)
}

// VerifyOTP exchanges a one-time code for a session.
func (s *Service) VerifyOTP(ctx context.Context, phoneNumber, code string) (AuthResult, error) {
	result, err := s.client.VerifyOTP(ctx, phoneNumber, code)
	if err != nil {
		s.log.AuthEvent("otp_verify", phoneNumber, false, err.Error())
		return AuthResult{}, err
	}
	return s.open(ctx, result)
}

func (s *Service) open(ctx context.Context, login upstream.LoginResult) (AuthResult, error) {
	now := time.Now().UTC()
	sess := Session{
		ID:            uuid.NewString(),
		UserID:        login.User.ID,
		Role:          login.User.Role,
		UpstreamToken: login.Token,
		User:          login.User,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.GetSessionTTL()),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return AuthResult{}, err
	}

	token, err := s.signAccessToken(sess)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "sign access token", err)
	}

	s.log.AuthEvent("login", login.User.Email, true, "")
	return AuthResult{AccessToken: token, User: login.User}, nil
}

func (s *Service) signAccessToken(sess Session) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  sess.UserID,
		"sid":  sess.ID,
		"role": sess.Role,
		"type": "access",
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
		"iat":  now.Unix(),
	}
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

// Resolve loads the session behind a validated access token.
func (s *Service) Resolve(ctx context.Context, sessionID string) (Session, error) {
	return s.store.Get(ctx, sessionID)
}

// Logout closes a session.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info("session closed", "session_id", sessionID)
	return nil
}

// Teardown is the forced-logout hook: when the quote service rejects a
// bearer token the owning session is deleted, so the very next portal
// request fails authentication instead of retrying a dead token. This is
// the only place a stale upstream token is handled.
func (s *Service) Teardown(ctx context.Context) {
	sessionID := IDFromContext(ctx)
	if sessionID == "" {
		return
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.log.Error("session teardown failed", "session_id", sessionID, "error", err)
		return
	}
	s.log.Warn("session torn down after upstream 401", "session_id", sessionID)
}

// ResetPassword relays a password change for the logged-in account. The
// session stays open; the upstream token remains valid.
func (s *Service) ResetPassword(ctx context.Context, currentPassword, newPassword string) error {
	return s.client.ResetPassword(ctx, currentPassword, newPassword)
}
