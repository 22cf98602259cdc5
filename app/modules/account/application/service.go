package accountservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	accountdomain "github.com/Black-And-White-Club/antrian/app/modules/account/domain"
	accountdb "github.com/Black-And-White-Club/antrian/app/modules/account/infrastructure/repositories"
	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/Black-And-White-Club/antrian/pkg/errkind"
	"github.com/Black-And-White-Club/antrian/pkg/eventbus"
	"github.com/Black-And-White-Club/antrian/pkg/events"
	"github.com/Black-And-White-Club/antrian/pkg/observability"
	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "AccountService"

// Config holds account defaults.
type Config struct {
	// DefaultGamesPerRound is the capacity of users who never chose one.
	DefaultGamesPerRound int
}

// AccountService implements Service.
type AccountService struct {
	repo      accountdb.Repository
	publisher message.Publisher
	logger    *slog.Logger
	metrics   observability.OperationMetrics
	tracer    trace.Tracer
	db        *bun.DB
	cfg       Config
	now       func() time.Time
}

var _ Service = (*AccountService)(nil)

// NewAccountService creates a new AccountService. A nil db runs without a
// transaction.
func NewAccountService(
	repo accountdb.Repository,
	publisher message.Publisher,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	cfg Config,
) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoop()
	}
	return &AccountService{
		repo:      storage{repo: repo},
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		tracer:    tracer,
		db:        db,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *AccountService) capacity(gamesPerRound *int) int {
	return queuedomain.CapacityPolicy{Default: s.cfg.DefaultGamesPerRound}.
		Capacity(queuedomain.Settings{GamesPerRound: gamesPerRound})
}

// observe wraps an operation with a span, metrics and outcome logs.
func observe[T any](s *AccountService, ctx context.Context, operationName string, userID int64, op func(ctx context.Context) (T, error)) (out T, err error) {
	span := trace.SpanFromContext(ctx)
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.Int64("user_id", userID),
		))
	}
	defer span.End()

	started := time.Now()
	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(started))
	}()

	logAttrs := []any{
		attr.ExtractCorrelationID(ctx),
		attr.String("operation", operationName),
		attr.UserID(userID),
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered", append(logAttrs, attr.Error(err))...)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
		}
	}()

	out, err = op(ctx)
	switch {
	case err == nil:
		s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
		s.logger.DebugContext(ctx, "Operation completed successfully", logAttrs...)
	case errkind.Of(err) == nil || errors.Is(err, errkind.TransientStorage):
		err = fmt.Errorf("%s: %w", operationName, err)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		s.logger.ErrorContext(ctx, "Operation failed with error", append(logAttrs, attr.Error(err))...)
		span.RecordError(err)
	default:
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		s.logger.InfoContext(ctx, "Operation rejected", append(logAttrs, attr.Error(err))...)
	}
	return out, err
}

func (s *AccountService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	var fnErr error
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		fnErr = fn(ctx, tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		// begin or commit failed
		err = errkind.Transient(err)
	}
	return err
}

// load returns the stored settings or the defaults for a user without a row.
func (s *AccountService) load(ctx context.Context, db bun.IDB, userID int64, forUpdate bool) (accountdomain.Settings, error) {
	get := s.repo.Get
	if forUpdate {
		get = s.repo.GetForUpdate
	}
	row, err := get(ctx, db, userID)
	if errors.Is(err, accountdb.ErrNotFound) {
		return accountdomain.Settings{UserID: userID}, nil
	}
	if err != nil {
		return accountdomain.Settings{}, err
	}
	return row.ToDomain(), nil
}

func (s *AccountService) GetSettings(ctx context.Context, userID int64) (*accountdomain.Settings, error) {
	return observe(s, ctx, "GetSettings", userID, func(ctx context.Context) (*accountdomain.Settings, error) {
		settings, err := s.load(ctx, nil, userID, false)
		if err != nil {
			return nil, err
		}
		settings.Capacity = s.capacity(settings.GamesPerRound)
		return &settings, nil
	})
}

// UpdateSettings applies a partial change and announces it. The event tells
// the queue module whether the effective capacity moved.
func (s *AccountService) UpdateSettings(ctx context.Context, userID int64, update accountdomain.Update) (*accountdomain.Settings, error) {
	return observe(s, ctx, "UpdateSettings", userID, func(ctx context.Context) (*accountdomain.Settings, error) {
		if err := update.Validate(); err != nil {
			return nil, err
		}

		var before, after accountdomain.Settings
		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			var err error
			before, err = s.load(ctx, db, userID, true)
			if err != nil {
				return err
			}
			after = update.Apply(before)
			after.UpdatedAt = s.now()
			return s.repo.Upsert(ctx, db, accountdb.FromDomain(after))
		})
		if err != nil {
			return nil, err
		}

		after.Capacity = s.capacity(after.GamesPerRound)
		s.publish(ctx, events.SettingsUpdatedPayloadV1{
			UserID:           userID,
			Capacity:         after.Capacity,
			CapacityChanged:  s.capacity(before.GamesPerRound) != after.Capacity,
			FastTrackEnabled: after.FastTrackEnabled,
		})
		return &after, nil
	})
}

func (s *AccountService) publish(ctx context.Context, payload events.SettingsUpdatedPayloadV1) {
	if s.publisher == nil {
		return
	}
	if err := eventbus.Publish(ctx, s.publisher, events.AccountSettingsUpdatedV1, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", events.AccountSettingsUpdatedV1),
			attr.Error(err),
		)
	}
}

// QueueSettings returns the capacity source and fast-track toggle. Users
// without a row get the defaults.
func (s *AccountService) QueueSettings(ctx context.Context, userID int64) (queuedomain.Settings, error) {
	return observe(s, ctx, "QueueSettings", userID, func(ctx context.Context) (queuedomain.Settings, error) {
		settings, err := s.load(ctx, nil, userID, false)
		if err != nil {
			return queuedomain.Settings{}, err
		}
		return queuedomain.Settings{
			GamesPerRound:    settings.GamesPerRound,
			FastTrackEnabled: settings.FastTrackEnabled,
		}, nil
	})
}

// ResolveUsername maps a public username to its owner.
func (s *AccountService) ResolveUsername(ctx context.Context, username string) (int64, error) {
	return observe(s, ctx, "ResolveUsername", 0, func(ctx context.Context) (int64, error) {
		name := accountdomain.NormalizeUsername(username)
		if name == "" {
			return 0, accountdomain.ErrUserNotFound
		}
		row, err := s.repo.GetByUsername(ctx, nil, name)
		if err != nil {
			return 0, err
		}
		return row.UserID, nil
	})
}
