// Package transport defines the request shapes of the auth endpoints.
package transport

// LoginRequest is an email/password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SendOTPRequest asks for a one-time code by SMS.
type SendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=30"`
}

// VerifyOTPRequest exchanges a one-time code for a session.
type VerifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required,min=7,max=30"`
	Code        string `json:"code" validate:"required,min=4,max=10"`
}

// ResetPasswordRequest changes the caller's upstream password.
type ResetPasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
