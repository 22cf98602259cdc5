package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/antrian/app"
	"github.com/Black-And-White-Club/antrian/config"
	"github.com/Black-And-White-Club/antrian/pkg/database"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "antrian",
		Usage: "round queue service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "path to the YAML config file",
				Value:   "config.yaml",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.BoolFlag{
				Name:    "migrate",
				Usage:   "apply pending migrations before serving",
				EnvVars: []string{"MIGRATE_ON_START"},
			},
		},
		Action: serve,
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "antrian: %v\n", err)
		os.Exit(1)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	obs, err := observability.New(observability.Config{
		ServiceName: cfg.Observability.ServiceName,
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if c.Bool("migrate") {
		if err := migrate(ctx, cfg, logger); err != nil {
			return err
		}
	}

	application, err := app.Initialize(ctx, cfg, obs)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer application.Close()

	logger.InfoContext(ctx, "Starting antrian",
		slog.String("environment", cfg.Observability.Environment),
		slog.Bool("nats", cfg.NATS.URL != ""),
	)
	return application.Run(ctx)
}

func migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Open(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.MigrateModules(ctx, db, logger, app.Migrations()); err != nil {
		return err
	}
	return database.MigrateRiver(ctx, cfg.Postgres.DSN, logger)
}
