package upstream

import (
	"context"
	"net/http"

	"simcoe_portal/internal/quotes/domain"
)

// LoginResult is the quote service's successful authentication response:
// the bearer token the portal must present on every later call, plus the
// authenticated user.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login exchanges credentials for an upstream bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var resp envelope[LoginResult]
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return LoginResult{}, err
	}
	return resp.Data, nil
}

// SendOTP asks the quote service to send a one-time code to the phone
// number on file for the account.
func (c *Client) SendOTP(ctx context.Context, phoneNumber string) error {
	body := struct {
		PhoneNumber string `json:"phoneNumber"`
	}{PhoneNumber: phoneNumber}
	return c.doJSON(ctx, http.MethodPost, "/auth/otp/send", body, nil)
}

// VerifyOTP exchanges a one-time code for a bearer token.
func (c *Client) VerifyOTP(ctx context.Context, phoneNumber, code string) (LoginResult, error) {
	body := struct {
		PhoneNumber string `json:"phoneNumber"`
		OTP         string `json:"otp"`
	}{PhoneNumber: phoneNumber, OTP: code}

	var resp envelope[LoginResult]
	if err := c.doJSON(ctx, http.MethodPost, "/auth/otp/verify", body, &resp); err != nil {
		return LoginResult{}, err
	}
	return resp.Data, nil
}

// ResetPassword sets a new password for the account that owns the
// presented token.
func (c *Client) ResetPassword(ctx context.Context, currentPassword, newPassword string) error {
	body := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{CurrentPassword: currentPassword, NewPassword: newPassword}
	return c.doJSON(ctx, http.MethodPost, "/auth/reset-password", body, nil)
}
