package account

import (
	"context"
	"log/slog"
	"sync"

	accountservice "github.com/Black-And-White-Club/antrian/app/modules/account/application"
	accounthandlers "github.com/Black-And-White-Club/antrian/app/modules/account/infrastructure/handlers"
	accountdb "github.com/Black-And-White-Club/antrian/app/modules/account/infrastructure/repositories"
	"github.com/Black-And-White-Club/antrian/config"
	"github.com/Black-And-White-Club/antrian/pkg/eventbus"
	"github.com/Black-And-White-Club/antrian/pkg/httpapi"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module represents the account module.
type Module struct {
	AccountService accountservice.Service
	config         *config.Config
	logger         *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// NewAccountModule creates the settings service and registers
// /api/account on httpRouter behind the protected guard.
func NewAccountModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	eventBus eventbus.EventBus,
	httpRouter chi.Router,
	guards httpapi.Guards,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "account.NewAccountModule called")

	service := accountservice.NewAccountService(
		accountdb.NewRepository(db),
		eventBus,
		logger,
		obs.Metrics,
		obs.Tracer,
		db,
		accountservice.Config{DefaultGamesPerRound: cfg.Queue.DefaultGamesPerRound},
	)

	if httpRouter != nil {
		handlers := accounthandlers.NewAccountHandlers(service, logger)
		httpRouter.Route("/api/account", func(r chi.Router) {
			r.Use(guards.Protected...)
			accounthandlers.Routes(r, handlers)
		})
	}

	return &Module{
		AccountService: service,
		config:         cfg,
		logger:         logger,
		stop:           make(chan struct{}),
	}, nil
}

// Run blocks until ctx is cancelled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}

	m.logger.InfoContext(ctx, "Account module started")
	select {
	case <-ctx.Done():
	case <-m.stop:
	}
	m.logger.InfoContext(ctx, "Account module goroutine stopped")
}

// Close stops the account module.
func (m *Module) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	m.logger.Info("Account module stopped")
	return nil
}
