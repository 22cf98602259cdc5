package accountservice

import (
	"context"

	accountdb "github.com/Black-And-White-Club/antrian/app/modules/account/infrastructure/repositories"
	"github.com/Black-And-White-Club/antrian/pkg/errkind"
	"github.com/uptrace/bun"
)

// storage marks repository errors without a kind as transient. ErrNotFound
// keeps its NotFound kind.
type storage struct {
	repo accountdb.Repository
}

func storageErr(err error) error {
	if err == nil || errkind.Of(err) != nil {
		return err
	}
	return errkind.Transient(err)
}

func (s storage) Get(ctx context.Context, db bun.IDB, userID int64) (*accountdb.QueueSettings, error) {
	row, err := s.repo.Get(ctx, db, userID)
	return row, storageErr(err)
}

func (s storage) GetForUpdate(ctx context.Context, db bun.IDB, userID int64) (*accountdb.QueueSettings, error) {
	row, err := s.repo.GetForUpdate(ctx, db, userID)
	return row, storageErr(err)
}

func (s storage) GetByUsername(ctx context.Context, db bun.IDB, username string) (*accountdb.QueueSettings, error) {
	row, err := s.repo.GetByUsername(ctx, db, username)
	return row, storageErr(err)
}

func (s storage) Upsert(ctx context.Context, db bun.IDB, settings *accountdb.QueueSettings) error {
	return storageErr(s.repo.Upsert(ctx, db, settings))
}
