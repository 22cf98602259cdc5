package queuejobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// QueueName is the River queue dedicated to queue maintenance jobs.
const QueueName = "queue_maintenance"

const metricsService = "river"

// Scheduler is the background job runner of the queue module.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	// PurgeNow enqueues a purge outside the periodic schedule.
	PurgeNow(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}

var _ Scheduler = (*Service)(nil)

// Config controls the periodic purge.
type Config struct {
	DSN            string
	PurgeInterval  time.Duration
	MaxWorkers     int
	RunPurgeOnBoot bool
}

// Service runs queue maintenance jobs on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics observability.OperationMetrics
}

// NewService connects a pgx pool for River and registers the purge worker
// with a periodic schedule.
func NewService(ctx context.Context, cfg Config, logger *slog.Logger, metrics observability.OperationMetrics, purger Purger) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_queue_job_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_service", metricsService)

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		ctxLogger.Error("Failed to parse DSN for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		ctxLogger.Error("Failed to create pgx pool for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	riverConfig, err := clientConfig(cfg, ctxLogger, purger)
	if err != nil {
		pool.Close()
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, err
	}

	client, err := river.NewClient(riverpgxv5.New(pool), riverConfig)
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_service", metricsService)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_service", metricsService)
	metrics.RecordOperationDuration(ctx, "initialize_service", metricsService, time.Since(start))
	ctxLogger.Info("Queue job service initialized",
		attr.Duration("purge_interval", cfg.PurgeInterval),
	)

	return &Service{client: client, pool: pool, logger: logger, metrics: metrics}, nil
}

// clientConfig builds the River configuration: workers, queues and the
// periodic purge.
func clientConfig(cfg Config, logger *slog.Logger, purger Purger) (*river.Config, error) {
	if cfg.PurgeInterval <= 0 {
		return nil, fmt.Errorf("purge interval must be positive, got %s", cfg.PurgeInterval)
	}
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 2
	}

	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, NewPurgeArchivedWorker(logger, purger)); err != nil {
		return nil, fmt.Errorf("failed to register purge worker: %w", err)
	}

	return &river.Config{
		Logger: logger,
		Queues: map[string]river.QueueConfig{
			QueueName: {MaxWorkers: maxWorkers},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.PurgeInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return PurgeArchivedJob{}, purgeInsertOpts()
				},
				&river.PeriodicJobOpts{RunOnStart: cfg.RunPurgeOnBoot},
			),
		},
	}, nil
}

func purgeInsertOpts() *river.InsertOpts {
	return &river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 5,
		UniqueOpts:  river.UniqueOpts{ByArgs: true, ByPeriod: time.Minute},
	}
}

func (s *Service) record(ctx context.Context, op string, start time.Time, err error) {
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, op, metricsService)
	} else {
		s.metrics.RecordOperationSuccess(ctx, op, metricsService)
	}
	s.metrics.RecordOperationDuration(ctx, op, metricsService, time.Since(start))
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_service", metricsService)

	err := s.client.Start(ctx)
	s.record(ctx, "start_service", start, err)
	if err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Queue job service started")
	return nil
}

// Stop waits for running jobs and releases the pool.
func (s *Service) Stop(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "stop_service", metricsService)

	err := s.client.Stop(ctx)
	s.pool.Close()
	s.record(ctx, "stop_service", start, err)
	if err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Queue job service stopped")
	return nil
}

func (s *Service) PurgeNow(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "purge_now", metricsService)

	res, err := s.client.Insert(ctx, PurgeArchivedJob{}, purgeInsertOpts())
	s.record(ctx, "purge_now", start, err)
	if err != nil {
		s.logger.Error("Failed to enqueue archive purge", attr.Error(err))
		return fmt.Errorf("failed to enqueue archive purge: %w", err)
	}
	s.logger.Info("Archive purge enqueued",
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// HealthCheck pings the River pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		s.logger.Error("Queue job service health check failed", attr.Error(err))
		return fmt.Errorf("queue job service health check failed: %w", err)
	}
	return nil
}
