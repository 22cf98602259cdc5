package auth

import (
	"context"
	"log/slog"
	"sync"

	authservice "github.com/Black-And-White-Club/antrian/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/antrian/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/antrian/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/antrian/config"
	"github.com/Black-And-White-Club/antrian/pkg/httpapi"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Module represents the auth module.
type Module struct {
	config     *config.Config
	service    authservice.Service
	handlers   authhandlers.Handlers
	public     chi.Middlewares
	protected  chi.Middlewares
	logger     *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewModule creates the auth module and registers /api/auth on httpRouter.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	httpRouter chi.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "Initializing auth module")

	jwtProvider := authjwt.NewProvider(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	service := authservice.NewService(jwtProvider, authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL}, logger, tracer)
	handlers := authhandlers.NewAuthHandlers(logger, tracer)

	limiter := authhandlers.NewIPRateLimiter(rate.Limit(cfg.HTTP.RateLimit), cfg.HTTP.RateBurst)
	public := chi.Chain(
		authhandlers.CORSMiddleware(cfg.HTTP.AllowedOrigins),
		authhandlers.RateLimitMiddleware(limiter),
	)
	protected := append(chi.Middlewares{}, public...)
	protected = append(protected, authhandlers.BearerAuth(service, logger))

	if httpRouter != nil {
		httpRouter.Route("/api/auth", func(r chi.Router) {
			r.Use(public...)
			r.Group(func(r chi.Router) {
				r.Use(authhandlers.BearerAuth(service, logger))
				r.Get("/me", handlers.HandleWhoAmI)
			})
		})
	}

	return &Module{
		config:    cfg,
		service:   service,
		handlers:  handlers,
		public:    public,
		protected: protected,
		logger:    logger,
		stop:      make(chan struct{}),
	}, nil
}

// Run blocks until ctx is cancelled or Close is called. The module has no
// background work; Run exists so every module starts the same way.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}

	m.logger.InfoContext(ctx, "Auth module started")
	select {
	case <-ctx.Done():
	case <-m.stop:
	}
	m.logger.InfoContext(ctx, "Auth module goroutine stopped")
}

// Close stops the auth module.
func (m *Module) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.logger.Info("Auth module stopped")
	return nil
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}

// Guards returns the middleware stacks other modules mount their routes with.
func (m *Module) Guards() httpapi.Guards {
	return httpapi.Guards{Public: m.public, Protected: m.protected}
}
