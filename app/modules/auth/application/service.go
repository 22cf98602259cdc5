package authservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authdomain "github.com/Black-And-White-Club/antrian/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/antrian/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTokenTTL applies when neither the caller nor the config set a ttl.
const DefaultTokenTTL = 24 * time.Hour

// Config holds the configuration for the auth service.
type Config struct {
	DefaultTTL time.Duration
}

type service struct {
	jwtProvider authjwt.Provider
	config      Config
	logger      *slog.Logger
	tracer      trace.Tracer
	now         func() time.Time
}

// NewService creates a new auth service.
func NewService(
	jwtProvider authjwt.Provider,
	config Config,
	logger *slog.Logger,
	tracer trace.Tracer,
) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DefaultTTL <= 0 {
		config.DefaultTTL = DefaultTokenTTL
	}
	return &service{
		jwtProvider: jwtProvider,
		config:      config,
		logger:      logger,
		tracer:      tracer,
		now:         time.Now,
	}
}

func (s *service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *service) IssueToken(ctx context.Context, userID int64, ttl time.Duration) (*TokenResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.IssueToken")
	defer span.End()

	if ttl <= 0 {
		ttl = s.config.DefaultTTL
	}

	token, err := s.jwtProvider.GenerateToken(userID, ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", attr.UserID(userID), attr.Error(err))
		span.RecordError(err)
		return nil, fmt.Errorf("%w: %w", ErrGenerateToken, err)
	}

	s.logger.InfoContext(ctx, "Issued API token", attr.UserID(userID), attr.Duration("ttl", ttl))
	return &TokenResponse{Token: token, ExpiresAt: s.now().Add(ttl).UTC()}, nil
}

func (s *service) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	ctx, span := s.startSpan(ctx, "AuthService.ValidateToken")
	defer span.End()

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		s.logger.DebugContext(ctx, "Token validation failed", attr.Error(err))
		if errors.Is(err, authjwt.ErrExpiredToken) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}
