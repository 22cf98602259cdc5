package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/antrian/app/modules/auth/domain"
)

// Service defines the authentication service interface.
type Service interface {
	// IssueToken mints a bearer token for userID. A zero ttl selects the
	// configured default.
	IssueToken(ctx context.Context, userID int64, ttl time.Duration) (*TokenResponse, error)

	// ValidateToken validates a bearer token and returns its claims.
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

// TokenResponse is a freshly issued bearer token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
