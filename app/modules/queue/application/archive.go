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

type roundsResult = results.OperationResult[[]queuedomain.Round, error]

type countResult = results.OperationResult[int64, error]

type bytesResult = results.OperationResult[[]byte, error]

// ListArchived returns archived rounds newest first, optionally bounded by
// a since expression.
func (s *QueueService) ListArchived(ctx context.Context, userID queuedomain.UserID, since string) ([]queuedomain.Round, error) {
	return run(s, ctx, "ListArchived", userID.String(), func(ctx context.Context, db bun.IDB) (roundsResult, error) {
		return s.listArchivedLogic(ctx, db, userID, since)
	})
}

func (s *QueueService) listArchivedLogic(ctx context.Context, db bun.IDB, userID queuedomain.UserID, since string) (roundsResult, error) {
	bound, err := parseSince(since, s.now())
	if err != nil {
		return results.FailureResult[[]queuedomain.Round, error](err), nil
	}
	rows, err := s.repo.ListArchived(ctx, db, int64(userID), bound)
	if err != nil {
		return roundsResult{}, err
	}
	out := make([]queuedomain.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return results.SuccessResult[[]queuedomain.Round, error](out), nil
}

// DeleteArchived permanently removes one archived round.
func (s *QueueService) DeleteArchived(ctx context.Context, userID queuedomain.UserID, roundID queuedomain.RoundID) error {
	_, err := run(s, ctx, "DeleteArchived", userID.String(), func(ctx context.Context, db bun.IDB) (countResult, error) {
		id, ok := roundID.Durable()
		if !ok {
			return results.FailureResult[int64, error](
				fmt.Errorf("round %s: %w", roundID, queuedomain.ErrRoundNotFound)), nil
		}

		row, err := s.repo.GetRound(ctx, db, int64(userID), id)
		if err != nil {
			if errors.Is(err, queuedb.ErrNotFound) {
				return results.FailureResult[int64, error](
					fmt.Errorf("round %s: %w", roundID, queuedomain.ErrRoundNotFound)), nil
			}
			return countResult{}, err
		}
		if err := queuedomain.CheckDeleteArchived(userID, row.ToDomain()); err != nil {
			return results.FailureResult[int64, error](err), nil
		}

		if err := s.repo.DeleteRound(ctx, db, int64(userID), id); err != nil {
			return countResult{}, err
		}
		return results.SuccessResult[int64, error](1), nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events.QueueArchiveDeletedV1, events.ArchiveDeletedPayloadV1{
		UserID:  int64(userID),
		RoundID: roundID.String(),
		Deleted: 1,
	})
	return nil
}

// DeleteAllArchived removes every archived round of the user.
func (s *QueueService) DeleteAllArchived(ctx context.Context, userID queuedomain.UserID) (int64, error) {
	deleted, err := run(s, ctx, "DeleteAllArchived", userID.String(), func(ctx context.Context, db bun.IDB) (countResult, error) {
		n, err := s.repo.DeleteAllArchived(ctx, db, int64(userID))
		if err != nil {
			return countResult{}, err
		}
		return results.SuccessResult[int64, error](n), nil
	})
	if err != nil {
		return 0, err
	}

	s.publish(ctx, events.QueueArchiveDeletedV1, events.ArchiveDeletedPayloadV1{
		UserID:  int64(userID),
		Deleted: deleted,
	})
	return deleted, nil
}

// ExportArchive renders the archived rounds as an xlsx workbook.
func (s *QueueService) ExportArchive(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error) {
	return run(s, ctx, "ExportArchive", userID.String(), func(ctx context.Context, db bun.IDB) (bytesResult, error) {
		listed, err := s.listArchivedLogic(ctx, db, userID, since)
		if err != nil || listed.IsFailure() {
			return bytesResult{Failure: listed.Failure}, err
		}
		data, err := BuildArchiveWorkbook(*listed.Success)
		if err != nil {
			return bytesResult{}, fmt.Errorf("failed to build workbook: %w", err)
		}
		return results.SuccessResult[[]byte, error](data), nil
	})
}

// ArchiveChart renders archived rounds per day as a PNG bar chart.
func (s *QueueService) ArchiveChart(ctx context.Context, userID queuedomain.UserID, since string) ([]byte, error) {
	return run(s, ctx, "ArchiveChart", userID.String(), func(ctx context.Context, db bun.IDB) (bytesResult, error) {
		listed, err := s.listArchivedLogic(ctx, db, userID, since)
		if err != nil || listed.IsFailure() {
			return bytesResult{Failure: listed.Failure}, err
		}
		data, err := RenderArchiveChart(*listed.Success)
		if err != nil {
			return bytesResult{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](data), nil
	})
}

// PurgeArchived deletes archived rounds of all users older than the
// configured retention. A zero retention disables purging.
func (s *QueueService) PurgeArchived(ctx context.Context) (int64, error) {
	if s.cfg.ArchiveRetention <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.cfg.ArchiveRetention)

	deleted, err := run(s, ctx, "PurgeArchived", "all", func(ctx context.Context, db bun.IDB) (countResult, error) {
		n, err := s.repo.PurgeArchivedBefore(ctx, db, cutoff)
		if err != nil {
			return countResult{}, err
		}
		return results.SuccessResult[int64, error](n), nil
	})
	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		s.publish(ctx, events.QueueArchivePurgedV1, events.ArchivePurgedPayloadV1{
			Cutoff:  cutoff,
			Deleted: deleted,
		})
	}
	return deleted, nil
}
