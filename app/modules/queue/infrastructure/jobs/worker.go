package queuejobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/antrian/pkg/observability/attr"
	"github.com/riverqueue/river"
)

// Purger is the part of the queue service the purge worker drives.
type Purger interface {
	PurgeArchived(ctx context.Context) (int64, error)
}

// PurgeArchivedWorker runs PurgeArchivedJob.
type PurgeArchivedWorker struct {
	river.WorkerDefaults[PurgeArchivedJob]
	purger Purger
	logger *slog.Logger
}

// NewPurgeArchivedWorker creates a new PurgeArchivedWorker.
func NewPurgeArchivedWorker(logger *slog.Logger, purger Purger) *PurgeArchivedWorker {
	return &PurgeArchivedWorker{purger: purger, logger: logger}
}

func (w *PurgeArchivedWorker) Work(ctx context.Context, job *river.Job[PurgeArchivedJob]) error {
	start := time.Now()
	deleted, err := w.purger.PurgeArchived(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Archive purge failed",
			attr.Int64("job_id", job.ID),
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return fmt.Errorf("failed to purge archived rounds: %w", err)
	}

	w.logger.InfoContext(ctx, "Archive purge finished",
		attr.Int64("job_id", job.ID),
		attr.Int64("deleted", deleted),
		attr.Duration("took", time.Since(start)),
	)
	return nil
}

// Timeout bounds a single purge run.
func (w *PurgeArchivedWorker) Timeout(*river.Job[PurgeArchivedJob]) time.Duration {
	return 2 * time.Minute
}
