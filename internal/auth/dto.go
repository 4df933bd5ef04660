package auth

import (
	"time"

	"github.com/nuvemflow/orderdesk-backend/internal/users"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the previous access token (from the Authorization
// header) and its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is the access/refresh pair issued on login or rotation.
type TokenResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	User         *users.UserDTO `json:"user"`
}
