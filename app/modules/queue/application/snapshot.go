package queueservice

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	queuedb "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// loadSnapshot reads the user's current and pending rounds.
func (s *QueueService) loadSnapshot(ctx context.Context, db bun.IDB, userID queuedomain.UserID) (queuedomain.Snapshot, error) {
	snap := queuedomain.Snapshot{UserID: userID}

	current, err := s.repo.LoadCurrentRound(ctx, db, int64(userID))
	switch {
	case err == nil:
		r := current.ToDomain()
		snap.Current = &r
	case errors.Is(err, queuedb.ErrNotFound):
	default:
		return snap, err
	}

	rows, err := s.repo.LoadRounds(ctx, db, int64(userID))
	if err != nil {
		return snap, err
	}
	for _, row := range rows {
		snap.Pending = append(snap.Pending, row.ToDomain())
	}
	return snap, nil
}

// lockAndLoad serialises writers for one user and loads the snapshot.
func (s *QueueService) lockAndLoad(ctx context.Context, db bun.IDB, userID queuedomain.UserID) (queuedomain.Snapshot, error) {
	if err := s.repo.LockUser(ctx, db, int64(userID)); err != nil {
		return queuedomain.Snapshot{}, err
	}
	return s.loadSnapshot(ctx, db, userID)
}

func (s *QueueService) loadSettings(ctx context.Context, userID queuedomain.UserID) (queuedomain.Settings, error) {
	if s.settings == nil {
		return queuedomain.Settings{}, nil
	}
	settings, err := s.settings.QueueSettings(ctx, int64(userID))
	if err != nil {
		return queuedomain.Settings{}, fmt.Errorf("failed to load queue settings: %w", err)
	}
	return settings, nil
}

// persist writes the difference between before and after. archived, when
// set, is the round leaving the snapshot through Clear. Rounds are written
// archived first, then pending, then current, so a demotion always lands
// before the matching promotion. Rounds that disappeared are deleted last,
// after their entries were re-homed. The returned snapshot carries durable
// ids for every round.
func (s *QueueService) persist(
	ctx context.Context,
	db bun.IDB,
	before, after queuedomain.Snapshot,
	archived *queuedomain.Round,
) (queuedomain.Snapshot, error) {
	previous := make(map[queuedomain.RoundID]queuedomain.Round)
	for _, r := range before.Rounds() {
		previous[r.ID] = r
	}

	out := after.Clone()
	kept := make(map[queuedomain.RoundID]bool)

	save := func(r *queuedomain.Round) error {
		kept[r.ID] = true
		if old, ok := previous[r.ID]; ok && reflect.DeepEqual(old, *r) {
			return nil
		}
		row := queuedb.FromDomain(*r)
		if err := s.repo.SaveRound(ctx, db, row); err != nil {
			return err
		}
		r.ID = queuedomain.DurableID(row.ID)
		return nil
	}

	if archived != nil {
		if err := save(archived); err != nil {
			return queuedomain.Snapshot{}, err
		}
	}
	for i := range out.Pending {
		if err := save(&out.Pending[i]); err != nil {
			return queuedomain.Snapshot{}, err
		}
	}
	if out.Current != nil {
		if err := save(out.Current); err != nil {
			return queuedomain.Snapshot{}, err
		}
	}

	for _, r := range before.Rounds() {
		if kept[r.ID] {
			continue
		}
		id, ok := r.ID.Durable()
		if !ok {
			continue
		}
		if err := s.repo.DeleteRound(ctx, db, int64(r.UserID), id); err != nil {
			return queuedomain.Snapshot{}, err
		}
	}
	return out, nil
}

func outcomeIDs(entries []queuedomain.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID.String())
	}
	return ids
}
