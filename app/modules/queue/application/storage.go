package queueservice

import (
	"context"
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	queuedb "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// storage marks repository errors that carry no kind as transient storage
// failures. Kinded errors such as queuedb.ErrNotFound pass through.
type storage struct {
	repo queuedb.Repository
}

func storageErr(err error) error {
	if err == nil || queuedomain.KindOf(err) != nil {
		return err
	}
	return queuedomain.Transient(err)
}

func (s storage) LockUser(ctx context.Context, db bun.IDB, userID int64) error {
	return storageErr(s.repo.LockUser(ctx, db, userID))
}

func (s storage) LoadRounds(ctx context.Context, db bun.IDB, userID int64) ([]*queuedb.Round, error) {
	rounds, err := s.repo.LoadRounds(ctx, db, userID)
	return rounds, storageErr(err)
}

func (s storage) LoadCurrentRound(ctx context.Context, db bun.IDB, userID int64) (*queuedb.Round, error) {
	round, err := s.repo.LoadCurrentRound(ctx, db, userID)
	return round, storageErr(err)
}

func (s storage) GetRound(ctx context.Context, db bun.IDB, userID, roundID int64) (*queuedb.Round, error) {
	round, err := s.repo.GetRound(ctx, db, userID, roundID)
	return round, storageErr(err)
}

func (s storage) SaveRound(ctx context.Context, db bun.IDB, round *queuedb.Round) error {
	return storageErr(s.repo.SaveRound(ctx, db, round))
}

func (s storage) DeleteRound(ctx context.Context, db bun.IDB, userID, roundID int64) error {
	return storageErr(s.repo.DeleteRound(ctx, db, userID, roundID))
}

func (s storage) ListArchived(ctx context.Context, db bun.IDB, userID int64, since *time.Time) ([]*queuedb.Round, error) {
	rounds, err := s.repo.ListArchived(ctx, db, userID, since)
	return rounds, storageErr(err)
}

func (s storage) DeleteAllArchived(ctx context.Context, db bun.IDB, userID int64) (int64, error) {
	n, err := s.repo.DeleteAllArchived(ctx, db, userID)
	return n, storageErr(err)
}

func (s storage) PurgeArchivedBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error) {
	n, err := s.repo.PurgeArchivedBefore(ctx, db, cutoff)
	return n, storageErr(err)
}
