package queuedomain

import "fmt"

// AssignOptions tunes target selection.
type AssignOptions struct {
	// IncludeCurrent lets the current round receive new entries. It is
	// considered before every pending round.
	IncludeCurrent bool
}

// Outcome is the result of Assign.
type Outcome struct {
	Snapshot Snapshot
	// Added lists the created entries in placement order.
	Added []Entry
}

// Assign places every requested copy into the user's rounds. Requests are
// processed in input order and each copy independently:
//
//   - fast-track: first round with space;
//   - regular: first round with space that lacks the label, then first round
//     with space;
//   - otherwise a new provisional round is appended.
//
// Copies of one request never share a round.
//
// Overflow left over from earlier edits is redistributed before placement.
func Assign(env Env, snap Snapshot, requests []Request, capacity int, opts AssignOptions) (Outcome, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return Outcome{}, err
	}
	if err := snap.checkOwnership(); err != nil {
		return Outcome{}, err
	}
	for i, req := range requests {
		if err := req.Validate(); err != nil {
			return Outcome{}, fmt.Errorf("request %d: %w", i, err)
		}
	}

	work := snap.Clone()
	candidates := sortBySequence(work.Pending)
	includeCurrent := opts.IncludeCurrent && work.Current != nil
	if includeCurrent {
		candidates = append([]Round{*work.Current}, candidates...)
	}

	candidates = Redistribute(env, snap.UserID, candidates, capacity)

	now := env.now()
	var added []Entry
	for _, req := range requests {
		used := map[int]bool{}
		for n := 0; n < req.copies(); n++ {
			entry := Entry{
				ID:        env.newID(),
				Label:     req.Label,
				FastTrack: req.FastTrack,
				CreatedAt: now,
			}

			idx := pickRound(candidates, entry, capacity, used)
			if idx < 0 {
				candidates = append(candidates, env.newRound(snap.UserID))
				idx = len(candidates) - 1
			}
			place(&candidates[idx], entry)
			used[idx] = true
			added = append(added, entry)
		}
	}

	if includeCurrent {
		current := candidates[0]
		work.Current = &current
		candidates = candidates[1:]
	}
	work.Pending = candidates

	return Outcome{Snapshot: Resequence(work), Added: added}, nil
}

func pickRound(rounds []Round, e Entry, capacity int, used map[int]bool) int {
	fallback := -1
	for i, r := range rounds {
		if used[i] || !r.hasSpace(capacity) {
			continue
		}
		if e.FastTrack || !r.HasLabel(e.Label) {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// Redistribute repairs rounds holding more than capacity entries. Each round
// is sorted fast-track first, then its tail beyond capacity moves to the head
// of the next round, appending provisional rounds as needed. Rounds that fit
// are only re-sorted.
func Redistribute(env Env, userID UserID, rounds []Round, capacity int) []Round {
	if capacity < 1 {
		capacity = 1
	}
	out := make([]Round, len(rounds))
	for i, r := range rounds {
		out[i] = r.Clone()
	}

	for i := 0; i < len(out); i++ {
		out[i].Entries = fastTrackFirst(out[i].Entries)
		if len(out[i].Entries) <= capacity {
			continue
		}
		overflow := append([]Entry(nil), out[i].Entries[capacity:]...)
		out[i].Entries = out[i].Entries[:capacity:capacity]
		if i+1 == len(out) {
			out = append(out, env.newRound(userID))
		}
		out[i+1].Entries = append(overflow, out[i+1].Entries...)
	}
	return out
}
