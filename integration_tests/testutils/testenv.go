//go:build integration

package testutils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/Black-And-White-Club/antrian/app"
	"github.com/Black-And-White-Club/antrian/integration_tests/containers"
	"github.com/Black-And-White-Club/antrian/pkg/database"
	"github.com/Black-And-White-Club/antrian/pkg/eventbus"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// TestEnvironment holds the containers and connections shared by the tests
// of one package.
type TestEnvironment struct {
	Ctx           context.Context
	PgContainer   *postgres.PostgresContainer
	NatsContainer *tcnats.NATSContainer
	DSN           string
	NatsURL       string
	DB            *bun.DB
	Obs           observability.Observability
}

// NewTestEnvironment starts Postgres and NATS and applies every migration.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	env := &TestEnvironment{Ctx: ctx, Obs: NewObservability()}

	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}
	env.PgContainer, env.DSN = pgContainer, dsn

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Terminate()
		return nil, err
	}
	env.NatsContainer, env.NatsURL = natsContainer, natsURL

	db, err := database.Open(ctx, dsn)
	if err != nil {
		env.Terminate()
		return nil, err
	}
	env.DB = db

	if err := database.MigrateModules(ctx, db, env.Obs.Logger, app.Migrations()); err != nil {
		env.Terminate()
		return nil, fmt.Errorf("failed to run module migrations: %w", err)
	}
	if err := database.MigrateRiver(ctx, dsn, env.Obs.Logger); err != nil {
		env.Terminate()
		return nil, fmt.Errorf("failed to run River migrations: %w", err)
	}
	return env, nil
}

// NewObservability returns a quiet logger, a no-op tracer and no-op
// metrics. Set ANTRIAN_TEST_LOGS=1 to see service logs.
func NewObservability() observability.Observability {
	level := "error"
	if os.Getenv("ANTRIAN_TEST_LOGS") == "1" {
		level = "debug"
	}
	return observability.Observability{
		Logger:  observability.NewLogger(os.Stderr, "development", level),
		Tracer:  noop.NewTracerProvider().Tracer("integration"),
		Metrics: observability.NewNoop(),
	}
}

// NewEventBus connects a NATS bus that is closed when the test ends.
func (env *TestEnvironment) NewEventBus(t *testing.T, queueGroup string) eventbus.EventBus {
	t.Helper()
	bus, err := eventbus.NewNATS(env.NatsURL, queueGroup, env.Obs.Logger)
	if err != nil {
		t.Fatalf("failed to connect event bus: %v", err)
	}
	t.Cleanup(func() {
		if err := bus.Close(); err != nil {
			env.Obs.Logger.Warn("event bus close failed", slog.Any("error", err))
		}
	})
	return bus
}

// Reset empties every table the modules own.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	_, err := env.DB.ExecContext(env.Ctx,
		"TRUNCATE queue_entries, queue_rounds, queue_settings RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
}

// Terminate closes connections and stops the containers.
func (env *TestEnvironment) Terminate() {
	if env.DB != nil {
		_ = env.DB.Close()
	}
	if env.NatsContainer != nil {
		_ = env.NatsContainer.Terminate(env.Ctx)
	}
	if env.PgContainer != nil {
		_ = env.PgContainer.Terminate(env.Ctx)
	}
}
