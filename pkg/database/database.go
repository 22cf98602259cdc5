// Package database opens the bun connection and runs schema migrations for
// every module plus River's job tables.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

// Open connects to Postgres through pgdriver and verifies the connection.
func Open(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(10*time.Second),
	))

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqldb.PingContext(pingCtx); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return bun.NewDB(sqldb, pgdialect.New()), nil
}

// ModuleMigrations names the migration set of one module. Each module keeps
// its own bookkeeping table so their groups do not interleave.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// Migrator returns a bun migrator with module scoped bookkeeping tables.
func (m ModuleMigrations) Migrator(db *bun.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, m.Migrations,
		migrate.WithTableName(m.Name+"_migrations"),
		migrate.WithLocksTableName(m.Name+"_migration_locks"),
	)
}

// MigrateModules initialises and applies every module in order.
func MigrateModules(ctx context.Context, db *bun.DB, logger *slog.Logger, modules []ModuleMigrations) error {
	for _, mod := range modules {
		migrator := mod.Migrator(db)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s migrations: %w", mod.Name, err)
		}
		if err := migrator.Lock(ctx); err != nil {
			return fmt.Errorf("failed to lock %s migrations: %w", mod.Name, err)
		}
		group, err := migrator.Migrate(ctx)
		unlockErr := migrator.Unlock(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.Name, err)
		}
		if unlockErr != nil {
			return fmt.Errorf("failed to unlock %s migrations: %w", mod.Name, unlockErr)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", mod.Name))
		} else {
			logger.InfoContext(ctx, "Migrated module",
				slog.String("module", mod.Name),
				slog.String("group", group.String()),
			)
		}
	}
	return nil
}

// MigrateRiver brings River's tables up to date. River needs pgx, so it
// gets its own short-lived pool.
func MigrateRiver(ctx context.Context, dsn string, logger *slog.Logger) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), &rivermigrate.Config{Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}

	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	logger.InfoContext(ctx, "River migrations applied", slog.Int("versions", len(res.Versions)))
	return nil
}
