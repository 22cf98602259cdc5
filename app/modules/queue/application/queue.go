package queueservice

import (
	"context"
	"errors"
	"fmt"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/Black-And-White-Club/antrian/pkg/events"
	"github.com/Black-And-White-Club/antrian/pkg/results"
	"github.com/uptrace/bun"
)

type snapshotResult = results.OperationResult[*queuedomain.Snapshot, error]

type outcomeResult = results.OperationResult[*queuedomain.Outcome, error]

// GetQueue returns the current and pending rounds of the user.
func (s *QueueService) GetQueue(ctx context.Context, userID queuedomain.UserID) (*queuedomain.Snapshot, error) {
	return run(s, ctx, "GetQueue", userID.String(), func(ctx context.Context, db bun.IDB) (snapshotResult, error) {
		snap, err := s.loadSnapshot(ctx, db, userID)
		if err != nil {
			return snapshotResult{}, fmt.Errorf("failed to load queue: %w", err)
		}
		return results.SuccessResult[*queuedomain.Snapshot, error](&snap), nil
	})
}

// GetPublicQueue returns the read-only queue published under a username.
func (s *QueueService) GetPublicQueue(ctx context.Context, username string) (*queuedomain.Snapshot, error) {
	return run(s, ctx, "GetPublicQueue", username, func(ctx context.Context, db bun.IDB) (snapshotResult, error) {
		if s.settings == nil {
			return results.FailureResult[*queuedomain.Snapshot, error](
				fmt.Errorf("user %q: %w", username, queuedomain.ErrNotFound)), nil
		}
		id, err := s.settings.ResolveUsername(ctx, username)
		if err != nil {
			if errors.Is(err, queuedomain.ErrNotFound) {
				return results.FailureResult[*queuedomain.Snapshot, error](err), nil
			}
			return snapshotResult{}, fmt.Errorf("failed to resolve username: %w", err)
		}
		snap, err := s.loadSnapshot(ctx, db, queuedomain.UserID(id))
		if err != nil {
			return snapshotResult{}, fmt.Errorf("failed to load queue: %w", err)
		}
		return results.SuccessResult[*queuedomain.Snapshot, error](&snap), nil
	})
}

// SubmitBatch assigns new entries to the user's rounds.
func (s *QueueService) SubmitBatch(ctx context.Context, userID queuedomain.UserID, requests []queuedomain.Request) (*queuedomain.Outcome, error) {
	out, err := run(s, ctx, "SubmitBatch", userID.String(), func(ctx context.Context, db bun.IDB) (outcomeResult, error) {
		return s.assignLogic(ctx, db, userID, requests)
	})
	if err != nil {
		return nil, err
	}
	s.publishAssigned(ctx, userID, out, "submit")
	return out, nil
}

// ImportBatch parses an uploaded CSV or XLSX file and assigns its rows.
func (s *QueueService) ImportBatch(ctx context.Context, userID queuedomain.UserID, filename string, data []byte) (*queuedomain.Outcome, error) {
	out, err := run(s, ctx, "ImportBatch", userID.String(), func(ctx context.Context, db bun.IDB) (outcomeResult, error) {
		parser, err := s.parsers.GetParser(filename)
		if err != nil {
			return results.FailureResult[*queuedomain.Outcome, error](err), nil
		}
		requests, err := parser.Parse(data)
		if err != nil {
			if queuedomain.KindOf(err) == nil {
				err = fmt.Errorf("%w: %w", err, queuedomain.ErrInvalidRequest)
			}
			return results.FailureResult[*queuedomain.Outcome, error](err), nil
		}
		return s.assignLogic(ctx, db, userID, requests)
	})
	if err != nil {
		return nil, err
	}
	s.publishAssigned(ctx, userID, out, "import")
	return out, nil
}

func (s *QueueService) assignLogic(ctx context.Context, db bun.IDB, userID queuedomain.UserID, requests []queuedomain.Request) (outcomeResult, error) {
	if len(requests) == 0 {
		return results.FailureResult[*queuedomain.Outcome, error](
			fmt.Errorf("no entries submitted: %w", queuedomain.ErrInvalidRequest)), nil
	}

	before, err := s.lockAndLoad(ctx, db, userID)
	if err != nil {
		return outcomeResult{}, err
	}
	// settings are read under the queue lock
	settings, err := s.loadSettings(ctx, userID)
	if err != nil {
		return outcomeResult{}, err
	}
	if !settings.FastTrackEnabled {
		for _, r := range requests {
			if r.FastTrack {
				return results.FailureResult[*queuedomain.Outcome, error](
					fmt.Errorf("entry %q: %w", r.Label, queuedomain.ErrFastTrackDisabled)), nil
			}
		}
	}

	outcome, err := queuedomain.Assign(s.env, before, requests, s.capacity(settings), queuedomain.AssignOptions{
		IncludeCurrent: s.cfg.AssignToCurrent,
	})
	if err != nil {
		return results.FailureResult[*queuedomain.Outcome, error](err), nil
	}

	saved, err := s.persist(ctx, db, before, outcome.Snapshot, nil)
	if err != nil {
		return outcomeResult{}, err
	}
	outcome.Snapshot = saved
	return results.SuccessResult[*queuedomain.Outcome, error](&outcome), nil
}

func (s *QueueService) publishAssigned(ctx context.Context, userID queuedomain.UserID, out *queuedomain.Outcome, source string) {
	s.publish(ctx, events.QueueEntriesAssignedV1, events.EntriesAssignedPayloadV1{
		UserID:     int64(userID),
		EntryIDs:   outcomeIDs(out.Added),
		RoundCount: len(out.Snapshot.Pending),
		Source:     source,
	})
}
