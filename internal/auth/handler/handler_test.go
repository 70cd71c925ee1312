package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"simcoe_portal/internal/session"
	"simcoe_portal/internal/upstream"
	"simcoe_portal/platform/httpkit"
	"simcoe_portal/platform/logger"
	"simcoe_portal/platform/validator"
)

type testConfig struct {
	baseURL string
}

func (c testConfig) GetUpstreamBaseURL() string        { return c.baseURL }
func (c testConfig) GetUpstreamTimeout() time.Duration { return 2 * time.Second }
func (c testConfig) GetUpstreamRatePerSecond() float64 { return 100 }
func (c testConfig) GetUpstreamBurst() int             { return 100 }
func (c testConfig) GetJWTAccessSecret() string        { return "test-secret-test-secret-test-1234" }
func (c testConfig) GetAccessTokenTTL() time.Duration  { return time.Hour }
func (c testConfig) GetSessionTTL() time.Duration      { return time.Hour }

func newTestRouter(t *testing.T, upstreamHandler http.Handler) (*gin.Engine, *session.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	server := httptest.NewServer(upstreamHandler)
	t.Cleanup(server.Close)

	cfg := testConfig{baseURL: server.URL}
	log := logger.New("test")
	client := upstream.New(cfg, log)
	sessions := session.NewService(session.NewStore(rdb, time.Hour), client, cfg, log)

	h := New(sessions, validator.New())
	engine := gin.New()
	h.RegisterRoutes(engine.Group("/auth"))
	return engine, sessions
}

func post(t *testing.T, engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	engine, _ := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","data":{"token":"upstream-token","user":{"id":"u-1","name":"Avery","email":"avery@example.com","role":"user"}}}`))
	}))

	rec := post(t, engine, "/auth/login", `{"email":"avery@example.com","password":"hunter22"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	var result struct {
		AccessToken string `json:"accessToken"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.AccessToken == "" {
		t.Error("missing access token")
	}
	if result.User.ID != "u-1" {
		t.Errorf("user id = %q", result.User.ID)
	}
}

func TestLoginRejectsMalformedBody(t *testing.T) {
	engine, _ := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no upstream call expected")
	}))

	rec := post(t, engine, "/auth/login", `{"email":"not-an-email","password":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestLoginPassesUpstreamRejectionThrough(t *testing.T) {
	engine, _ := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid credentials"}`))
	}))

	rec := post(t, engine, "/auth/login", `{"email":"avery@example.com","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLogoutClosesSession(t *testing.T) {
	engine, sessions := newTestRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","data":{"token":"upstream-token","user":{"id":"u-1"}}}`))
	}))

	result, err := sessions.Login(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "avery@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	// Mount the protected logout handler with a fake identity for the
	// session just opened.
	sess, err := sessionFromToken(t, sessions, result.AccessToken)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	h := New(sessions, validator.New())
	engine.POST("/logout", func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, sess.UserID)
		c.Set(httpkit.ContextSessionIDKey, sess.ID)
		c.Set(httpkit.ContextRoleKey, sess.Role)
	}, h.Logout)

	rec := post(t, engine, "/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d body %s", rec.Code, rec.Body.String())
	}

	if _, err := sessions.Resolve(httptest.NewRequest(http.MethodGet, "/", nil).Context(), sess.ID); err == nil {
		t.Error("session should be gone after logout")
	}
}

// sessionFromToken finds the session the access token names by scanning
// the claims, avoiding a JWT dependency in this test.
func sessionFromToken(t *testing.T, sessions *session.Service, token string) (session.Session, error) {
	t.Helper()
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("malformed token %q", token)
	}
	payload, err := jwtSegment(parts[1])
	if err != nil {
		return session.Session{}, err
	}
	var claims struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return session.Session{}, err
	}
	return sessions.Resolve(httptest.NewRequest(http.MethodGet, "/", nil).Context(), claims.SID)
}

func jwtSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(segment)
}
