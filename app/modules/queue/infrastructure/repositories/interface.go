package queuedb

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Repository defines the contract for queue persistence. Every method takes
// the bun.IDB to run on so callers can share one transaction; nil selects the
// repository's own connection.
//
// Lookups scoped by user return ErrNotFound for rounds owned by another user.
type Repository interface {
	// LockUser blocks until no other transaction holds the user's queue lock.
	// The lock is released when the surrounding transaction ends.
	LockUser(ctx context.Context, db bun.IDB, userID int64) error

	// LoadRounds returns pending rounds ordered by sequence.
	LoadRounds(ctx context.Context, db bun.IDB, userID int64) ([]*Round, error)

	// LoadCurrentRound returns ErrNotFound when the user has no current round.
	LoadCurrentRound(ctx context.Context, db bun.IDB, userID int64) (*Round, error)

	// GetRound returns a round of any status.
	GetRound(ctx context.Context, db bun.IDB, userID, roundID int64) (*Round, error)

	// SaveRound inserts the round when its ID is zero, assigning the ID, and
	// updates it otherwise. The stored entries are replaced by round.Entries.
	SaveRound(ctx context.Context, db bun.IDB, round *Round) error

	// DeleteRound removes a round and its entries.
	DeleteRound(ctx context.Context, db bun.IDB, userID, roundID int64) error

	// ListArchived returns archived rounds, newest first. A non-nil since
	// keeps rounds archived at or after it.
	ListArchived(ctx context.Context, db bun.IDB, userID int64, since *time.Time) ([]*Round, error)

	// DeleteAllArchived removes every archived round of the user.
	DeleteAllArchived(ctx context.Context, db bun.IDB, userID int64) (int64, error)

	// PurgeArchivedBefore removes archived rounds of all users archived
	// before cutoff.
	PurgeArchivedBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error)
}
