package queuedomain

import (
	"fmt"
	"time"
)

// Promote makes target the current round. A previously current round goes
// back to the head of the pending rounds. The returned snapshot never holds
// two current rounds. Promoting the current round is a no-op.
func Promote(snap Snapshot, target RoundID) (Snapshot, error) {
	if err := snap.checkOwnership(); err != nil {
		return Snapshot{}, err
	}
	out := snap.Clone()
	if out.Current != nil && out.Current.ID == target {
		return Resequence(out), nil
	}

	idx := -1
	for i, r := range out.Pending {
		if r.ID == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Snapshot{}, fmt.Errorf("round %s: %w", target, ErrRoundNotFound)
	}

	promoted := out.Pending[idx]
	rest := append(append([]Round(nil), out.Pending[:idx]...), out.Pending[idx+1:]...)

	if out.Current != nil {
		demoted := *out.Current
		demoted.Status = StatusPending
		rest = append([]Round{demoted}, rest...)
	}
	promoted.Status = StatusCurrent
	out.Current = &promoted
	out.Pending = rest

	return Resequence(out), nil
}

// Clear archives the current round at now. Its entries and sequence number
// are kept; the remaining rounds are renumbered from 1.
func Clear(snap Snapshot, now time.Time) (Snapshot, Round, error) {
	if err := snap.checkOwnership(); err != nil {
		return Snapshot{}, Round{}, err
	}
	if snap.Current == nil {
		return Snapshot{}, Round{}, ErrNoCurrentRound
	}
	out := snap.Clone()

	archived := *out.Current
	archived.Status = StatusArchived
	archivedAt := now
	archived.ArchivedAt = &archivedAt
	out.Current = nil

	return Resequence(out), archived, nil
}

// CheckDeleteArchived verifies round may be permanently removed by userID.
func CheckDeleteArchived(userID UserID, round Round) error {
	if round.UserID != userID {
		return fmt.Errorf("round %s: %w", round.ID, ErrRoundNotFound)
	}
	if round.Status != StatusArchived {
		return fmt.Errorf("round %s: %w", round.ID, ErrRoundNotArchived)
	}
	return nil
}
