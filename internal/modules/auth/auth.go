package auth

import (
	"context"
	"time"

	"github.com/georgemunganga/lensworks-backend/internal/modules/staff"
)

// Token is the result of a successful login.
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Staff       *staff.Staff `json:"staff"`
}

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service defines the interface for authentication-related business logic.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*Token, error)
}
