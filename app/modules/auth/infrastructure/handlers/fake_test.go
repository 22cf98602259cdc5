package authhandlers

import (
	"context"
	"time"

	authservice "github.com/Black-And-White-Club/antrian/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/antrian/app/modules/auth/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	IssueTokenFunc    func(ctx context.Context, userID int64, ttl time.Duration) (*authservice.TokenResponse, error)
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

func (f *FakeService) IssueToken(ctx context.Context, userID int64, ttl time.Duration) (*authservice.TokenResponse, error) {
	if f.IssueTokenFunc != nil {
		return f.IssueTokenFunc(ctx, userID, ttl)
	}
	return &authservice.TokenResponse{Token: "token"}, nil
}

func (f *FakeService) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	if f.ValidateTokenFunc != nil {
		return f.ValidateTokenFunc(ctx, tokenString)
	}
	return &authdomain.Claims{UserID: 1}, nil
}

var _ authservice.Service = (*FakeService)(nil)
