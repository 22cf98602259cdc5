package queuedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a round does not exist for the user.
var ErrNotFound = fmt.Errorf("queue round not found: %w", queuedomain.ErrNotFound)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new queue repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) LockUser(ctx context.Context, db bun.IDB, userID int64) error {
	db = r.resolveDB(db)
	key := "antrian.queue:" + strconv.FormatInt(userID, 10)
	if _, err := db.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", key); err != nil {
		return fmt.Errorf("failed to lock queue for user %d: %w", userID, err)
	}
	return nil
}

func orderEntries(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("qe.position ASC")
}

func (r *Impl) LoadRounds(ctx context.Context, db bun.IDB, userID int64) ([]*Round, error) {
	db = r.resolveDB(db)
	var rounds []*Round
	err := db.NewSelect().
		Model(&rounds).
		Relation("Entries", orderEntries).
		Where("qr.user_id = ?", userID).
		Where("qr.status = ?", string(queuedomain.StatusPending)).
		Order("qr.sequence ASC", "qr.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}
	return rounds, nil
}

func (r *Impl) LoadCurrentRound(ctx context.Context, db bun.IDB, userID int64) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Relation("Entries", orderEntries).
		Where("qr.user_id = ?", userID).
		Where("qr.status = ?", string(queuedomain.StatusCurrent)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load current round: %w", err)
	}
	return round, nil
}

func (r *Impl) GetRound(ctx context.Context, db bun.IDB, userID, roundID int64) (*Round, error) {
	db = r.resolveDB(db)
	round := new(Round)
	err := db.NewSelect().
		Model(round).
		Relation("Entries", orderEntries).
		Where("qr.id = ?", roundID).
		Where("qr.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get round: %w", err)
	}
	return round, nil
}

func (r *Impl) SaveRound(ctx context.Context, db bun.IDB, round *Round) error {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	round.UpdatedAt = now

	if round.ID == 0 {
		if round.CreatedAt.IsZero() {
			round.CreatedAt = now
		}
		if _, err := db.NewInsert().Model(round).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert round: %w", err)
		}
	} else {
		result, err := db.NewUpdate().
			Model(round).
			Column("sequence", "status", "archived_at", "updated_at").
			Where("id = ?", round.ID).
			Where("user_id = ?", round.UserID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update round: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return ErrNotFound
		}
	}

	return r.replaceEntries(ctx, db, round)
}

func (r *Impl) replaceEntries(ctx context.Context, db bun.IDB, round *Round) error {
	keep := make([]uuid.UUID, 0, len(round.Entries))
	for i, e := range round.Entries {
		e.RoundID = round.ID
		e.Position = i
		if e.CreatedAt.IsZero() {
			e.CreatedAt = round.UpdatedAt
		}
		keep = append(keep, e.ID)
	}

	del := db.NewDelete().
		Model((*Entry)(nil)).
		Where("round_id = ?", round.ID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN (?)", bun.In(keep))
	}
	if _, err := del.Exec(ctx); err != nil {
		return fmt.Errorf("failed to prune entries: %w", err)
	}

	if len(round.Entries) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&round.Entries).
		On("CONFLICT (id) DO UPDATE").
		Set("round_id = EXCLUDED.round_id").
		Set("position = EXCLUDED.position").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert entries: %w", err)
	}
	return nil
}

func (r *Impl) DeleteRound(ctx context.Context, db bun.IDB, userID, roundID int64) error {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("id = ?", roundID).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete round: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) ListArchived(ctx context.Context, db bun.IDB, userID int64, since *time.Time) ([]*Round, error) {
	db = r.resolveDB(db)
	var rounds []*Round
	q := db.NewSelect().
		Model(&rounds).
		Relation("Entries", orderEntries).
		Where("qr.user_id = ?", userID).
		Where("qr.status = ?", string(queuedomain.StatusArchived))
	if since != nil {
		q = q.Where("qr.archived_at >= ?", *since)
	}
	if err := q.Order("qr.archived_at DESC", "qr.id DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list archived rounds: %w", err)
	}
	return rounds, nil
}

func (r *Impl) DeleteAllArchived(ctx context.Context, db bun.IDB, userID int64) (int64, error) {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("user_id = ?", userID).
		Where("status = ?", string(queuedomain.StatusArchived)).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete archived rounds: %w", err)
	}
	return result.RowsAffected()
}

func (r *Impl) PurgeArchivedBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error) {
	db = r.resolveDB(db)
	result, err := db.NewDelete().
		Model((*Round)(nil)).
		Where("status = ?", string(queuedomain.StatusArchived)).
		Where("archived_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge archived rounds: %w", err)
	}
	return result.RowsAffected()
}
