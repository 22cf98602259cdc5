package queuedomain

import "slices"

// Resequence numbers the current round 1 and pending rounds after it, in
// their given order. Without a current round pending rounds start at 1.
func Resequence(snap Snapshot) Snapshot {
	out := snap.Clone()
	next := 1
	if out.Current != nil {
		out.Current.Sequence = next
		next++
	}
	for i := range out.Pending {
		out.Pending[i].Sequence = next
		next++
	}
	return out
}

func sortBySequence(rounds []Round) []Round {
	out := make([]Round, len(rounds))
	for i, r := range rounds {
		out[i] = r.Clone()
	}
	slices.SortStableFunc(out, func(a, b Round) int { return a.Sequence - b.Sequence })
	return out
}

// fastTrackFirst is a stable partition of entries.
func fastTrackFirst(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.FastTrack {
			out = append(out, e)
		}
	}
	for _, e := range entries {
		if !e.FastTrack {
			out = append(out, e)
		}
	}
	return out
}

// place inserts e keeping fast-track entries first: fast-track entries go
// after the existing fast-track block, regular entries at the end.
func place(r *Round, e Entry) {
	if !e.FastTrack {
		r.Entries = append(r.Entries, e)
		return
	}
	r.Entries = slices.Insert(r.Entries, r.fastTrackCount(), e)
}
