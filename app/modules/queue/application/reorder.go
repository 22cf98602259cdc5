package queueservice

import (
	"context"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/Black-And-White-Club/antrian/pkg/events"
	"github.com/Black-And-White-Club/antrian/pkg/results"
	"github.com/uptrace/bun"
)

// MoveEntry applies a manual move. Pending rounds are repacked afterwards
// when consolidate is set or auto consolidation is configured.
func (s *QueueService) MoveEntry(ctx context.Context, userID queuedomain.UserID, mv queuedomain.Move, consolidate bool) (*queuedomain.Snapshot, error) {
	consolidate = consolidate || s.cfg.AutoConsolidate

	snap, err := run(s, ctx, "MoveEntry", userID.String(), func(ctx context.Context, db bun.IDB) (snapshotResult, error) {
		before, err := s.lockAndLoad(ctx, db, userID)
		if err != nil {
			return snapshotResult{}, err
		}

		after, err := queuedomain.MoveEntry(before, mv)
		if err != nil {
			return results.FailureResult[*queuedomain.Snapshot, error](err), nil
		}
		if consolidate {
			settings, err := s.loadSettings(ctx, userID)
			if err != nil {
				return snapshotResult{}, err
			}
			after, err = queuedomain.ConsolidateSnapshot(s.env, after, s.capacity(settings))
			if err != nil {
				return results.FailureResult[*queuedomain.Snapshot, error](err), nil
			}
		}

		saved, err := s.persist(ctx, db, before, after, nil)
		if err != nil {
			return snapshotResult{}, err
		}
		return results.SuccessResult[*queuedomain.Snapshot, error](&saved), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.QueueEntryMovedV1, events.EntryMovedPayloadV1{
		UserID:       int64(userID),
		SourceRound:  mv.SourceRound.String(),
		DestRound:    mv.DestRound.String(),
		Consolidated: consolidate,
	})
	return snap, nil
}

// Consolidate repacks the pending rounds on request of the user.
func (s *QueueService) Consolidate(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error) {
	return s.consolidate(ctx, "Consolidate", userID, "manual")
}

// Rebalance repacks the pending rounds after the user's capacity changed.
func (s *QueueService) Rebalance(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error) {
	return s.consolidate(ctx, "Rebalance", userID, "capacity_changed")
}

func (s *QueueService) consolidate(ctx context.Context, operationName string, userID queuedomain.UserID, reason string) (*queuedomain.Snapshot, error) {
	var capacity int
	snap, err := run(s, ctx, operationName, userID.String(), func(ctx context.Context, db bun.IDB) (snapshotResult, error) {
		before, err := s.lockAndLoad(ctx, db, userID)
		if err != nil {
			return snapshotResult{}, err
		}
		settings, err := s.loadSettings(ctx, userID)
		if err != nil {
			return snapshotResult{}, err
		}
		capacity = s.capacity(settings)

		after, err := queuedomain.ConsolidateSnapshot(s.env, before, capacity)
		if err != nil {
			return results.FailureResult[*queuedomain.Snapshot, error](err), nil
		}

		saved, err := s.persist(ctx, db, before, after, nil)
		if err != nil {
			return snapshotResult{}, err
		}
		return results.SuccessResult[*queuedomain.Snapshot, error](&saved), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.QueueConsolidatedV1, events.ConsolidatedPayloadV1{
		UserID:     int64(userID),
		RoundCount: len(snap.Pending),
		Capacity:   capacity,
		Reason:     reason,
	})
	return snap, nil
}
