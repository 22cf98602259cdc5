package queuedomain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Validate reports every invariant the snapshot breaks: dense sequencing,
// capacity, fast-track order, a single current round and unique entries.
func Validate(snap Snapshot, capacity int) error {
	var errs []error

	if snap.Current != nil && snap.Current.Status != StatusCurrent {
		errs = append(errs, fmt.Errorf("current round %s has status %q", snap.Current.ID, snap.Current.Status))
	}

	seen := map[uuid.UUID]RoundID{}
	for i, r := range snap.Rounds() {
		if r.Sequence != i+1 {
			errs = append(errs, fmt.Errorf("round %s has sequence %d, want %d", r.ID, r.Sequence, i+1))
		}
		if r.UserID != snap.UserID {
			errs = append(errs, fmt.Errorf("round %s belongs to user %s", r.ID, r.UserID))
		}
		if r.Status == StatusCurrent && (snap.Current == nil || r.ID != snap.Current.ID) {
			errs = append(errs, fmt.Errorf("pending round %s is marked current", r.ID))
		}
		if r.Status == StatusArchived {
			errs = append(errs, fmt.Errorf("round %s is archived", r.ID))
		}
		if len(r.Entries) > capacity {
			errs = append(errs, fmt.Errorf("round %s holds %d entries, capacity %d", r.ID, len(r.Entries), capacity))
		}
		regularSeen := false
		for _, e := range r.Entries {
			if e.FastTrack && regularSeen {
				errs = append(errs, fmt.Errorf("round %s has fast-track entry %s after a regular entry", r.ID, e.ID))
				break
			}
			regularSeen = regularSeen || !e.FastTrack
		}
		for _, e := range r.Entries {
			if other, dup := seen[e.ID]; dup {
				errs = append(errs, fmt.Errorf("entry %s appears in rounds %s and %s", e.ID, other, r.ID))
			}
			seen[e.ID] = r.ID
		}
	}
	return errors.Join(errs...)
}
