// Package app wires the modules into one process: a chi HTTP server, a
// watermill router over the event bus and the River job client.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Black-And-White-Club/antrian/app/modules/account"
	accountmigrations "github.com/Black-And-White-Club/antrian/app/modules/account/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/antrian/app/modules/auth"
	"github.com/Black-And-White-Club/antrian/app/modules/queue"
	queuemigrations "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/antrian/config"
	"github.com/Black-And-White-Club/antrian/pkg/database"
	"github.com/Black-And-White-Club/antrian/pkg/eventbus"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Migrations lists every module's schema in the order it must be applied.
func Migrations() []database.ModuleMigrations {
	return []database.ModuleMigrations{
		{Name: "account", Migrations: accountmigrations.Migrations},
		{Name: "queue", Migrations: queuemigrations.Migrations},
	}
}

// App owns every long-lived resource of the service.
type App struct {
	Config        *config.Config
	Obs           observability.Observability
	DB            *bun.DB
	EventBus      eventbus.EventBus
	Router        *message.Router
	HTTPServer    *http.Server
	MetricsServer *http.Server
	AuthModule    *auth.Module
	AccountModule *account.Module
	QueueModule   *queue.Module

	routerCtx    context.Context
	routerCancel context.CancelFunc
	wg           sync.WaitGroup
}

// Initialize builds the application from cfg. Nothing is started until Run.
func Initialize(ctx context.Context, cfg *config.Config, obs observability.Observability) (*App, error) {
	logger := obs.Logger
	app := &App{Config: cfg, Obs: obs}

	db, err := database.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return nil, err
	}
	app.DB = db

	if cfg.NATS.URL != "" {
		bus, err := eventbus.NewNATS(cfg.NATS.URL, cfg.NATS.QueueGroup, logger)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect event bus: %w", err)
		}
		app.EventBus = bus
	} else {
		logger.WarnContext(ctx, "NATS URL not set; events stay in process")
		app.EventBus = eventbus.NewInMemory(logger)
	}

	router, err := eventbus.NewRouter(logger, obs.Registry)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	app.Router = router
	app.routerCtx, app.routerCancel = context.WithCancel(context.Background())

	httpRouter := chi.NewRouter()
	httpRouter.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	httpRouter.Get("/healthz", app.handleHealth)

	metricsHandler := promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{Registry: obs.Registry})
	if cfg.Observability.MetricsAddress != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metricsHandler)
		app.MetricsServer = &http.Server{
			Addr:              cfg.Observability.MetricsAddress,
			Handler:           metricsMux,
			ReadHeaderTimeout: readHeaderTimeout,
		}
	} else {
		httpRouter.Handle("/metrics", metricsHandler)
	}

	if err := app.initializeModules(ctx, httpRouter); err != nil {
		app.Close()
		return nil, err
	}

	app.HTTPServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpRouter,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return app, nil
}

func (app *App) initializeModules(ctx context.Context, httpRouter chi.Router) error {
	authModule, err := auth.NewModule(ctx, app.Config, app.Obs, httpRouter)
	if err != nil {
		return fmt.Errorf("failed to initialize auth module: %w", err)
	}
	app.AuthModule = authModule
	guards := authModule.Guards()

	accountModule, err := account.NewAccountModule(ctx, app.Config, app.Obs, app.DB, app.EventBus, httpRouter, guards)
	if err != nil {
		return fmt.Errorf("failed to initialize account module: %w", err)
	}
	app.AccountModule = accountModule

	queueModule, err := queue.NewQueueModule(ctx, app.Config, app.Obs, queue.Deps{
		DB:         app.DB,
		EventBus:   app.EventBus,
		Router:     app.Router,
		HTTPRouter: httpRouter,
		Guards:     guards,
		Settings:   accountModule.AccountService,
	}, app.routerCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize queue module: %w", err)
	}
	app.QueueModule = queueModule
	return nil
}

func (app *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := "ok"
	if err := app.DB.PingContext(ctx); err != nil {
		status, body = http.StatusServiceUnavailable, "database unavailable"
	} else if app.QueueModule != nil && app.QueueModule.Jobs != nil {
		if err := app.QueueModule.Jobs.HealthCheck(ctx); err != nil {
			status, body = http.StatusServiceUnavailable, "job queue unavailable"
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Run starts the modules, the message router and the HTTP server, and
// blocks until ctx is cancelled or the server fails.
func (app *App) Run(ctx context.Context) error {
	logger := app.Obs.Logger

	modCtx, cancelModules := context.WithCancel(ctx)
	defer cancelModules()

	app.wg.Add(3)
	go app.AuthModule.Run(modCtx, &app.wg)
	go app.AccountModule.Run(modCtx, &app.wg)
	go app.QueueModule.Run(modCtx, &app.wg)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(app.routerCtx)
	}()

	select {
	case <-app.Router.Running():
	case err := <-routerErr:
		return fmt.Errorf("message router stopped during startup: %w", err)
	case <-ctx.Done():
		return nil
	}

	if app.MetricsServer != nil {
		go func() {
			logger.InfoContext(ctx, "Metrics server listening", slog.String("addr", app.MetricsServer.Addr))
			if err := app.MetricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "Metrics server failed", slog.Any("error", err))
			}
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.InfoContext(ctx, "Shutdown requested")
		return nil
	case err := <-routerErr:
		if err != nil {
			return fmt.Errorf("message router stopped: %w", err)
		}
		return nil
	case err, ok := <-serverErr:
		if ok && err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}
}

// Close shuts everything down in reverse start order. It is safe to call on
// a partially initialized App.
func (app *App) Close() {
	logger := app.Obs.Logger
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if app.HTTPServer != nil {
		if err := app.HTTPServer.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down HTTP server", slog.Any("error", err))
		}
	}
	if app.MetricsServer != nil {
		if err := app.MetricsServer.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down metrics server", slog.Any("error", err))
		}
	}

	if app.QueueModule != nil {
		if err := app.QueueModule.Close(); err != nil {
			logger.Error("Error closing queue module", slog.Any("error", err))
		}
	}
	if app.AccountModule != nil {
		if err := app.AccountModule.Close(); err != nil {
			logger.Error("Error closing account module", slog.Any("error", err))
		}
	}
	if app.AuthModule != nil {
		if err := app.AuthModule.Close(); err != nil {
			logger.Error("Error closing auth module", slog.Any("error", err))
		}
	}
	app.wg.Wait()

	if app.routerCancel != nil {
		app.routerCancel()
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			logger.Error("Error closing message router", slog.Any("error", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", slog.Any("error", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Error closing database", slog.Any("error", err))
		}
	}
	logger.Info("Application stopped")
}
