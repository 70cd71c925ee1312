// Package upstream is the HTTP client for the remote quote service, the
// system of record for quotes, users, tariffs, and pricing. The portal
// holds no authority over any of that data; every operation here is a
// plain proxy with typed error mapping.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"simcoe_portal/platform/apperr"
	"simcoe_portal/platform/config"
	"simcoe_portal/platform/logger"
)

type tokenKey struct{}

// ContextWithToken attaches the caller's upstream bearer token to the
// context. The session middleware sets it once per request.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Client talks to the quote service. Safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	log        *logger.Logger

	// onUnauthorized runs when the quote service rejects a bearer token.
	// It is set once at composition time and tears the session down, so
	// a stale token is handled in exactly one place.
	onUnauthorized func(ctx context.Context)
}

// New creates a quote service client.
func New(cfg config.UpstreamConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.GetUpstreamTimeout()},
		baseURL:    cfg.GetUpstreamBaseURL(),
		limiter:    rate.NewLimiter(rate.Limit(cfg.GetUpstreamRatePerSecond()), cfg.GetUpstreamBurst()),
		log:        log,
	}
}

// SetOnUnauthorized installs the 401 hook. Call before serving traffic.
func (c *Client) SetOnUnauthorized(fn func(ctx context.Context)) {
	c.onUnauthorized = fn
}

// envelope is the quote service's standard response wrapper.
type envelope[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// doJSON performs one request against the quote service and decodes the
// enveloped response into out (which may be nil for operations whose
// response body is irrelevant).
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperr.Unavailable("quote service request canceled").WithOp("upstream." + method + path)
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, "encode request", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError(method+" "+path, err)
		return apperr.Unavailable("quote service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.log.UpstreamError(method+" "+path, err)
			return apperr.Unavailable("quote service sent an unreadable response")
		}
		return nil
	}

	return c.mapFailure(ctx, method, path, resp)
}

func (c *Client) mapFailure(ctx context.Context, method, path string, resp *http.Response) error {
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)
	message := body.Message
	if message == "" {
		message = body.Error
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
		}
		return apperr.Unauthorized("session expired")
	case resp.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "not allowed"
		}
		return apperr.Forbidden(message)
	case resp.StatusCode == http.StatusNotFound:
		if message == "" {
			message = "not found"
		}
		return apperr.NotFound(message)
	case resp.StatusCode == http.StatusTooManyRequests:
		// Throttling is transient; treat it like an outage so the
		// caller retries instead of discarding its input.
		c.log.UpstreamError(method+" "+path, fmt.Errorf("status %d", resp.StatusCode))
		return apperr.Unavailable("quote service is busy, try again")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		if message == "" {
			message = fmt.Sprintf("quote service rejected the request (status %d)", resp.StatusCode)
		}
		return apperr.BadRequest(message)
	default:
		c.log.UpstreamError(method+" "+path, fmt.Errorf("status %d", resp.StatusCode))
		return apperr.Unavailable("quote service error")
	}
}
