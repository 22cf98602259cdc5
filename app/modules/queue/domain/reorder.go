package queuedomain

import (
	"fmt"
	"slices"
)

// Move relocates one entry by position.
type Move struct {
	SourceRound RoundID `json:"source_round"`
	SourceIndex int     `json:"source_index"`
	DestRound   RoundID `json:"dest_round"`
	DestIndex   int     `json:"dest_index"`
}

// MoveEntry applies a raw positional move between any two rounds of snap,
// the current round included. Capacity and fast-track order are not
// enforced; callers wanting them restored consolidate afterwards.
// DestIndex may equal the destination length to append.
func MoveEntry(snap Snapshot, mv Move) (Snapshot, error) {
	if err := snap.checkOwnership(); err != nil {
		return Snapshot{}, err
	}
	out := snap.Clone()

	src := out.lookup(mv.SourceRound)
	if src == nil {
		return Snapshot{}, fmt.Errorf("source round %s: %w", mv.SourceRound, ErrRoundNotFound)
	}
	dst := out.lookup(mv.DestRound)
	if dst == nil {
		return Snapshot{}, fmt.Errorf("destination round %s: %w", mv.DestRound, ErrRoundNotFound)
	}
	if mv.SourceIndex < 0 || mv.SourceIndex >= len(src.Entries) {
		return Snapshot{}, fmt.Errorf("source index %d of %d: %w", mv.SourceIndex, len(src.Entries), ErrEntryNotFound)
	}

	limit := len(dst.Entries)
	if src == dst {
		limit--
	}
	if mv.DestIndex < 0 || mv.DestIndex > limit {
		return Snapshot{}, fmt.Errorf("destination index %d of %d: %w", mv.DestIndex, limit, ErrEntryNotFound)
	}

	entry := src.Entries[mv.SourceIndex]
	src.Entries = slices.Delete(src.Entries, mv.SourceIndex, mv.SourceIndex+1)
	dst.Entries = slices.Insert(dst.Entries, mv.DestIndex, entry)

	return out, nil
}

func (s *Snapshot) lookup(id RoundID) *Round {
	if s.Current != nil && s.Current.ID == id {
		return s.Current
	}
	for i := range s.Pending {
		if s.Pending[i].ID == id {
			return &s.Pending[i]
		}
	}
	return nil
}
