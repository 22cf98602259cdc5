package queueservice

import (
	"context"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
)

// Service is the queue application surface used by HTTP handlers, event
// handlers and background jobs.
type Service interface {
	GetQueue(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error)
	GetPublicQueue(ctx context.Context, username string) (*queuedomain.Snapshot, error)

	SubmitBatch(ctx context.Context, userID queuedomain.UserID, requests []queuedomain.Request) (*queuedomain.Outcome, error)
	ImportBatch(ctx context.Context, userID queuedomain.UserID, filename string, data []byte) (*queuedomain.Outcome, error)

	MoveEntry(ctx context.Context, userID queuedomain.UserID, mv queuedomain.Move, consolidate bool) (*queuedomain.Snapshot, error)
	Consolidate(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error)
	Rebalance(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error)

	Promote(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) (*queuedomain.Snapshot, error)
	ClearCurrent(ctx context.Context, userID queuedomain.UserID) (*ClearResult, error)

	ListArchived(ctx context.Context, userID queuedomain.UserID, since string) ([]queuedomain.Round, error)
	DeleteArchived(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) error
	DeleteAllArchived(ctx context.Context, userID queuedomain.UserID) (int64, error)
	ExportArchive(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error)
	ArchiveChart(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error)
	PurgeArchived(ctx context.Context) (int64, error)
}

// SettingsReader supplies per-user queue settings owned by the account
// module. Unknown users must yield an error wrapping queuedomain.ErrNotFound.
type SettingsReader interface {
	QueueSettings(ctx context.Context, userID int64) (queuedomain.Settings, error)
	ResolveUsername(ctx context.Context, username string) (int64, error)
}

// ClearResult is the queue after archiving the current round.
type ClearResult struct {
	Snapshot queuedomain.Snapshot `json:"queue"`
	Archived queuedomain.Round    `json:"archived"`
}
