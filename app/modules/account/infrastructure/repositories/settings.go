package accountdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	accountdomain "github.com/Black-And-White-Club/antrian/app/modules/account/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

var (
	// ErrNotFound is returned when a user has no settings row.
	ErrNotFound = fmt.Errorf("queue settings not found: %w", accountdomain.ErrUserNotFound)
	// ErrUsernameConflict is returned when another user holds the username.
	ErrUsernameConflict = fmt.Errorf("username unique constraint: %w", accountdomain.ErrUsernameTaken)
)

const uniqueViolation = "23505"

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new settings repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) get(ctx context.Context, q *bun.SelectQuery) (*QueueSettings, error) {
	row := new(QueueSettings)
	if err := q.Model(row).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load queue settings: %w", err)
	}
	return row, nil
}

func (r *Impl) Get(ctx context.Context, db bun.IDB, userID int64) (*QueueSettings, error) {
	db = r.resolveDB(db)
	return r.get(ctx, db.NewSelect().Where("qs.user_id = ?", userID))
}

// GetForUpdate locks the row for the rest of the transaction.
func (r *Impl) GetForUpdate(ctx context.Context, db bun.IDB, userID int64) (*QueueSettings, error) {
	db = r.resolveDB(db)
	return r.get(ctx, db.NewSelect().Where("qs.user_id = ?", userID).For("UPDATE"))
}

func (r *Impl) GetByUsername(ctx context.Context, db bun.IDB, username string) (*QueueSettings, error) {
	db = r.resolveDB(db)
	return r.get(ctx, db.NewSelect().Where("qs.username = ?", username))
}

func (r *Impl) Upsert(ctx context.Context, db bun.IDB, settings *QueueSettings) error {
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(settings).
		On("CONFLICT (user_id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("games_per_round = EXCLUDED.games_per_round").
		Set("fast_track_enabled = EXCLUDED.fast_track_enabled").
		Set("updated_at = EXCLUDED.updated_at").
		Returning("updated_at").
		Exec(ctx)
	if err != nil {
		var pgErr pgdriver.Error
		if errors.As(err, &pgErr) && pgErr.Field('C') == uniqueViolation {
			return ErrUsernameConflict
		}
		return fmt.Errorf("failed to save queue settings: %w", err)
	}
	return nil
}
