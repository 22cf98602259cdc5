package accountdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository persists per-user queue settings. Every method accepts an
// optional bun.IDB so callers can run it inside their transaction; nil
// uses the repository's own connection.
type Repository interface {
	Get(ctx context.Context, db bun.IDB, userID int64) (*QueueSettings, error)
	GetForUpdate(ctx context.Context, db bun.IDB, userID int64) (*QueueSettings, error)
	GetByUsername(ctx context.Context, db bun.IDB, username string) (*QueueSettings, error)
	Upsert(ctx context.Context, db bun.IDB, settings *QueueSettings) error
}
