package queueservice

import (
	"context"
	"errors"
	"fmt"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	queuedb "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories"
	"github.com/Black-And-White-Club/antrian/pkg/events"
	"github.com/Black-And-White-Club/antrian/pkg/results"
	"github.com/uptrace/bun"
)

type clearResult = results.OperationResult[*ClearResult, error]

// Promote makes roundID the current round.
func (s *QueueService) Promote(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) (*queuedomain.Snapshot, error) {
	var demoted string
	snap, err := run(s, ctx, "Promote", userID.String(), func(ctx context.Context, db bun.IDB) (snapshotResult, error) {
		before, err := s.lockAndLoad(ctx, db, userID)
		if err != nil {
			return snapshotResult{}, err
		}

		if _, ok := before.Find(roundID); !ok {
			return s.missingRound(ctx, db, userID, roundID)
		}

		after, err := queuedomain.Promote(before, roundID)
		if err != nil {
			return results.FailureResult[*queuedomain.Snapshot, error](err), nil
		}
		if before.Current != nil && before.Current.ID != roundID {
			demoted = before.Current.ID.String()
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

	s.publish(ctx, events.QueueRoundPromotedV1, events.RoundPromotedPayloadV1{
		UserID:       int64(userID),
		RoundID:      snap.Current.ID.String(),
		DemotedRound: demoted,
	})
	return snap, nil
}

// missingRound explains why a round is not part of the live queue.
func (s *QueueService) missingRound(ctx context.Context, db bun.IDB, userID queuedomain.UserID, roundID queuedomain.RoundID) (snapshotResult, error) {
	notFound := results.FailureResult[*queuedomain.Snapshot, error](
		fmt.Errorf("round %s: %w", roundID, queuedomain.ErrRoundNotFound))

	id, ok := roundID.Durable()
	if !ok {
		return notFound, nil
	}
	row, err := s.repo.GetRound(ctx, db, int64(userID), id)
	if err != nil {
		if errors.Is(err, queuedb.ErrNotFound) {
			return notFound, nil
		}
		return snapshotResult{}, err
	}
	if row.Status == string(queuedomain.StatusArchived) {
		return results.FailureResult[*queuedomain.Snapshot, error](
			fmt.Errorf("round %s: %w", roundID, queuedomain.ErrRoundArchived)), nil
	}
	return notFound, nil
}

// ClearCurrent archives the current round.
func (s *QueueService) ClearCurrent(ctx context.Context, userID queuedomain.UserID) (*ClearResult, error) {
	res, err := run(s, ctx, "ClearCurrent", userID.String(), func(ctx context.Context, db bun.IDB) (clearResult, error) {
		before, err := s.lockAndLoad(ctx, db, userID)
		if err != nil {
			return clearResult{}, err
		}

		after, archived, err := queuedomain.Clear(before, s.now())
		if err != nil {
			return results.FailureResult[*ClearResult, error](err), nil
		}

		saved, err := s.persist(ctx, db, before, after, &archived)
		if err != nil {
			return clearResult{}, err
		}
		return results.SuccessResult[*ClearResult, error](&ClearResult{Snapshot: saved, Archived: archived}), nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.QueueRoundClearedV1, events.RoundClearedPayloadV1{
		UserID:     int64(userID),
		RoundID:    res.Archived.ID.String(),
		EntryCount: len(res.Archived.Entries),
		ArchivedAt: *res.Archived.ArchivedAt,
	})
	return res, nil
}
