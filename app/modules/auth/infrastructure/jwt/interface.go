package authjwt

import (
	"time"

	authdomain "github.com/Black-And-White-Club/antrian/app/modules/auth/domain"
)

// Provider issues and validates API bearer tokens.
type Provider interface {
	// GenerateToken signs a token for userID valid for ttl.
	GenerateToken(userID int64, ttl time.Duration) (string, error)

	// ValidateToken checks signature, expiry, issuer and audience.
	ValidateToken(tokenString string) (*authdomain.Claims, error)
}
