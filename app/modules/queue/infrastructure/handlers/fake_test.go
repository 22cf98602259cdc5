package queuehandlers

import (
	"context"

	queueservice "github.com/Black-And-White-Club/antrian/app/modules/queue/application"
	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	GetQueueFunc          func(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error)
	GetPublicQueueFunc    func(ctx context.Context, username string) (*queuedomain.Snapshot, error)
	SubmitBatchFunc       func(ctx context.Context, userID queuedomain.UserID, requests []queuedomain.Request) (*queuedomain.Outcome, error)
	ImportBatchFunc       func(ctx context.Context, userID queuedomain.UserID, filename string, data []byte) (*queuedomain.Outcome, error)
	MoveEntryFunc         func(ctx context.Context, userID queuedomain.UserID, mv queuedomain.Move, consolidate bool) (*queuedomain.Snapshot, error)
	ConsolidateFunc       func(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error)
	RebalanceFunc         func(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error)
	PromoteFunc           func(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) (*queuedomain.Snapshot, error)
	ClearCurrentFunc      func(ctx context.Context, userID queuedomain.UserID) (*queueservice.ClearResult, error)
	ListArchivedFunc      func(ctx context.Context, userID queuedomain.UserID, since string) ([]queuedomain.Round, error)
	DeleteArchivedFunc    func(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) error
	DeleteAllArchivedFunc func(ctx context.Context, userID queuedomain.UserID) (int64, error)
	ExportArchiveFunc     func(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error)
	ArchiveChartFunc      func(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error)
	PurgeArchivedFunc     func(ctx context.Context) (int64, error)
}

var _ queueservice.Service = (*FakeService)(nil)

func emptySnapshot(userID queuedomain.UserID) *queuedomain.Snapshot {
	return &queuedomain.Snapshot{UserID: userID, Pending: []queuedomain.Round{}}
}

func (f *FakeService) GetQueue(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error) {
	if f.GetQueueFunc != nil {
		return f.GetQueueFunc(ctx, userID)
	}
	return emptySnapshot(userID), nil
}

func (f *FakeService) GetPublicQueue(ctx context.Context, username string) (*queuedomain.Snapshot, error) {
	if f.GetPublicQueueFunc != nil {
		return f.GetPublicQueueFunc(ctx, username)
	}
	return emptySnapshot(0), nil
}

func (f *FakeService) SubmitBatch(ctx context.Context, userID queuedomain.UserID, requests []queuedomain.Request) (*queuedomain.Outcome, error) {
	if f.SubmitBatchFunc != nil {
		return f.SubmitBatchFunc(ctx, userID, requests)
	}
	return &queuedomain.Outcome{Snapshot: *emptySnapshot(userID)}, nil
}

func (f *FakeService) ImportBatch(ctx context.Context, userID queuedomain.UserID, filename string, data []byte) (*queuedomain.Outcome, error) {
	if f.ImportBatchFunc != nil {
		return f.ImportBatchFunc(ctx, userID, filename, data)
	}
	return &queuedomain.Outcome{Snapshot: *emptySnapshot(userID)}, nil
}

func (f *FakeService) MoveEntry(ctx context.Context, userID queuedomain.UserID, mv queuedomain.Move, consolidate bool) (*queuedomain.Snapshot, error) {
	if f.MoveEntryFunc != nil {
		return f.MoveEntryFunc(ctx, userID, mv, consolidate)
	}
	return emptySnapshot(userID), nil
}

func (f *FakeService) Consolidate(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error) {
	if f.ConsolidateFunc != nil {
		return f.ConsolidateFunc(ctx, userID)
	}
	return emptySnapshot(userID), nil
}

func (f *FakeService) Rebalance(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error) {
	if f.RebalanceFunc != nil {
		return f.RebalanceFunc(ctx, userID)
	}
	return emptySnapshot(userID), nil
}

func (f *FakeService) Promote(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) (*queuedomain.Snapshot, error) {
	if f.PromoteFunc != nil {
		return f.PromoteFunc(ctx, userID, roundID)
	}
	return emptySnapshot(userID), nil
}

func (f *FakeService) ClearCurrent(ctx context.Context, userID queuedomain.UserID) (*queueservice.ClearResult, error) {
	if f.ClearCurrentFunc != nil {
		return f.ClearCurrentFunc(ctx, userID)
	}
	return &queueservice.ClearResult{Snapshot: *emptySnapshot(userID)}, nil
}

func (f *FakeService) ListArchived(ctx context.Context, userID queuedomain.UserID, since string) ([]queuedomain.Round, error) {
	if f.ListArchivedFunc != nil {
		return f.ListArchivedFunc(ctx, userID, since)
	}
	return nil, nil
}

func (f *FakeService) DeleteArchived(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) error {
	if f.DeleteArchivedFunc != nil {
		return f.DeleteArchivedFunc(ctx, userID, roundID)
	}
	return nil
}

func (f *FakeService) DeleteAllArchived(ctx context.Context, userID queuedomain.UserID) (int64, error) {
	if f.DeleteAllArchivedFunc != nil {
		return f.DeleteAllArchivedFunc(ctx, userID)
	}
	return 0, nil
}

func (f *FakeService) ExportArchive(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error) {
	if f.ExportArchiveFunc != nil {
		return f.ExportArchiveFunc(ctx, userID, since)
	}
	return nil, nil
}

func (f *FakeService) ArchiveChart(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error) {
	if f.ArchiveChartFunc != nil {
		return f.ArchiveChartFunc(ctx, userID, since)
	}
	return nil, nil
}

func (f *FakeService) PurgeArchived(ctx context.Context) (int64, error) {
	if f.PurgeArchivedFunc != nil {
		return f.PurgeArchivedFunc(ctx)
	}
	return 0, nil
}
