package queueservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/antrian/app/modules/queue/application/parsers"
	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	queuedb "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories"
	"github.com/Black-And-White-Club/antrian/pkg/eventbus"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"github.com/Black-And-White-Club/antrian/pkg/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "QueueService"

// Config tunes queue behaviour.
type Config struct {
	// DefaultCapacity applies to users without games_per_round.
	DefaultCapacity int
	// AutoConsolidate repacks pending rounds after every manual move.
	AutoConsolidate bool
	// AssignToCurrent lets new entries fill the current round.
	AssignToCurrent bool
	// ArchiveRetention is how long archived rounds are kept. Zero keeps them.
	ArchiveRetention time.Duration
}

// QueueService implements Service.
type QueueService struct {
	repo      queuedb.Repository
	settings  SettingsReader
	publisher message.Publisher
	parsers   parsers.ParserFactory
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	cfg       Config
	env       queuedomain.Env
}

// Option customises a QueueService.
type Option func(*QueueService)

// WithEnv overrides id generation and the clock.
func WithEnv(env queuedomain.Env) Option {
	return func(s *QueueService) { s.env = env }
}

// WithParsers overrides the import parser factory.
func WithParsers(f parsers.ParserFactory) Option {
	return func(s *QueueService) { s.parsers = f }
}

// NewQueueService creates a new QueueService. A nil db runs operations
// without a transaction, which only tests should rely on.
func NewQueueService(
	repo queuedb.Repository,
	settings SettingsReader,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	cfg Config,
	opts ...Option,
) *QueueService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &QueueService{
		repo:      storage{repo: repo},
		settings:  settings,
		publisher: publisher,
		parsers:   parsers.NewFactory(),
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *QueueService) now() time.Time {
	if s.env.Now != nil {
		return s.env.Now()
	}
	return time.Now().UTC()
}

func (s *QueueService) capacity(settings queuedomain.Settings) int {
	return queuedomain.CapacityPolicy{Default: s.cfg.DefaultCapacity}.Capacity(settings)
}

// publish sends an event after the transaction committed. Failures are
// logged and never change the operation's outcome.
func (s *QueueService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := eventbus.Publish(ctx, s.publisher, topic, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.Error(err),
		)
	}
}

type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry runs op inside a span, records metrics, recovers panics and
// logs the outcome.
func withTelemetry[S any, F any](
	s *QueueService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	span := trace.SpanFromContext(ctx)
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	}
	defer span.End()

	if s.metrics != nil {
		s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
		started := time.Now()
		defer func() {
			s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(started))
		}()
	}

	logAttrs := []any{
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.String("identifier", identifier),
	}
	s.logger.InfoContext(ctx, "Operation triggered", logAttrs...)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered", append(logAttrs, attr.Error(err))...)
			if s.metrics != nil {
				s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			}
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)
	if err != nil {
		err = fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error", append(logAttrs, attr.Error(err))...)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		span.RecordError(err)
		return result, err
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			append(logAttrs, attr.Any("failure_payload", *result.Failure))...)
		if s.metrics != nil {
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		}
		return result, nil
	}

	s.logger.InfoContext(ctx, "Operation completed successfully", logAttrs...)
	if s.metrics != nil {
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	}
	return result, nil
}

// runInTx runs fn in one transaction. A returned error rolls back; a failure
// result commits, which is safe because domain failures are detected before
// any write.
func runInTx[S any, F any](
	s *QueueService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	var fnErr error
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		result, fnErr = fn(ctx, tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin or commit failed
		err = queuedomain.Transient(err)
	}
	return result, err
}

// run is the common body of every public method.
func run[S any](
	s *QueueService,
	ctx context.Context,
	operationName string,
	identifier string,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error),
) (S, error) {
	var zero S
	result, err := withTelemetry(s, ctx, operationName, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		return runInTx(s, ctx, fn)
	})
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}
