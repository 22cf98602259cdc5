package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	queueservice "github.com/Black-And-White-Club/antrian/app/modules/queue/application"
	queuehandlers "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/handlers"
	queuejobs "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/jobs"
	queuedb "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories"
	queuerouter "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/router"
	"github.com/Black-And-White-Club/antrian/config"
	"github.com/Black-And-White-Club/antrian/pkg/eventbus"
	"github.com/Black-And-White-Club/antrian/pkg/httpapi"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

const shutdownTimeout = 30 * time.Second

// Module represents the queue module.
type Module struct {
	QueueService queueservice.Service
	QueueRouter  *queuerouter.QueueRouter
	Jobs         queuejobs.Scheduler
	config       *config.Config
	logger       *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// Deps are the collaborators the queue module borrows from the application.
type Deps struct {
	DB         *bun.DB
	EventBus   eventbus.EventBus
	Router     *message.Router
	HTTPRouter chi.Router
	Guards     httpapi.Guards
	Settings   queueservice.SettingsReader
}

// NewQueueModule creates the queue service, registers its HTTP routes and
// event consumers, and prepares the retention job when a retention is set.
func NewQueueModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	deps Deps,
	routerCtx context.Context,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer

	logger.InfoContext(ctx, "queue.NewQueueModule called")

	repo := queuedb.NewRepository(deps.DB)
	service := queueservice.NewQueueService(
		repo,
		deps.Settings,
		deps.EventBus,
		logger,
		obs.Metrics,
		tracer,
		deps.DB,
		queueservice.Config{
			DefaultCapacity:  cfg.Queue.DefaultGamesPerRound,
			AutoConsolidate:  cfg.Queue.AutoConsolidate,
			AssignToCurrent:  cfg.Queue.AssignToCurrent,
			ArchiveRetention: cfg.Queue.ArchiveRetention,
		},
	)

	queueRouter := queuerouter.NewQueueRouter(logger, deps.Router, deps.EventBus, tracer)
	if err := queueRouter.Configure(routerCtx, service); err != nil {
		return nil, fmt.Errorf("failed to configure queue router: %w", err)
	}

	if deps.HTTPRouter != nil {
		handlers := queuehandlers.NewQueueHandlers(service, logger, tracer)
		deps.HTTPRouter.Route("/api/queue", func(r chi.Router) {
			r.Use(deps.Guards.Protected...)
			queuehandlers.Routes(r, handlers)
		})
		deps.HTTPRouter.With(deps.Guards.Public...).
			Get("/api/public/{username}/queue", handlers.HandleGetPublicQueue)
	}

	module := &Module{
		QueueService: service,
		QueueRouter:  queueRouter,
		config:       cfg,
		logger:       logger,
		stop:         make(chan struct{}),
	}

	if cfg.Queue.ArchiveRetention > 0 {
		jobs, err := queuejobs.NewService(ctx, queuejobs.Config{
			DSN:            cfg.Postgres.DSN,
			PurgeInterval:  cfg.Queue.PurgeInterval,
			RunPurgeOnBoot: true,
		}, logger, obs.Metrics, service)
		if err != nil {
			return nil, fmt.Errorf("failed to create queue job service: %w", err)
		}
		module.Jobs = jobs
	} else {
		logger.InfoContext(ctx, "Archive retention disabled; purge job not scheduled")
	}

	return module, nil
}

// Run starts the background jobs and blocks until ctx is cancelled or Close
// is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.InfoContext(ctx, "Starting queue module")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	if m.Jobs != nil {
		if err := m.Jobs.Start(ctx); err != nil {
			m.logger.ErrorContext(ctx, "Failed to start queue jobs", "error", err)
		}
	}

	select {
	case <-ctx.Done():
	case <-m.stop:
	}
	m.logger.InfoContext(ctx, "Queue module goroutine stopped")
}

// Close stops the background jobs. The shared watermill router is closed by
// its owner.
func (m *Module) Close() error {
	m.logger.Info("Stopping queue module")

	m.stopOnce.Do(func() { close(m.stop) })

	if m.Jobs != nil {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := m.Jobs.Stop(stopCtx); err != nil {
			m.logger.Error("Error stopping queue jobs", "error", err)
			return fmt.Errorf("error stopping queue jobs: %w", err)
		}
	}

	m.logger.Info("Queue module stopped")
	return nil
}
