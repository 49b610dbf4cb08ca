package http

import (
	"time"

	"github.com/feastflow/feastflow-api/internal/domain"
)

// RegisterRequest carries email registration fields.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2" example:"Jane Doe"`
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
	Role     string `json:"role" validate:"omitempty,oneof=customer caterer admin" example:"caterer"`
}

// LoginRequest carries email login fields.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"jane@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"secret1"`
}

// ForgotPasswordRequest captures the payload for requesting a reset link.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email" example:"jane@example.com"`
}

// ResetPasswordRequest captures the new password for a reset completion.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6" example:"newsecret"`
}

// AuthUser is the public-safe projection returned by auth endpoints. It
// never carries the password hash or the reset credential.
type AuthUser struct {
	ID    int64  `json:"id" example:"1"`
	Name  string `json:"name" example:"Jane Doe"`
	Email string `json:"email" example:"jane@example.com"`
	Role  string `json:"role" example:"customer"`
}

// AuthTokenResponse is returned by endpoints that issue bearer tokens.
type AuthTokenResponse struct {
	Token     string   `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	ExpiresAt string   `json:"expires_at" example:"2026-01-08T09:30:00Z"`
	User      AuthUser `json:"user"`
}

func newAuthUser(u *domain.User) AuthUser {
	return AuthUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func newAuthTokenResponse(token string, expiresAt time.Time, u *domain.User) AuthTokenResponse {
	return AuthTokenResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      newAuthUser(u),
	}
}
