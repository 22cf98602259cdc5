package queuedomain

// Consolidate repacks rounds into the fewest rounds of at most capacity
// entries. Entries keep their relative order within the fast-track and the
// regular group, fast-track first. The i-th output round reuses the id and
// metadata of the i-th input round (by sequence) when there is one; extra
// rounds are provisional and created through env. Input rounds beyond the output count are dropped.
// Sequences are renumbered from 1. The result is stable under reapplication.
func Consolidate(env Env, rounds []Round, capacity int) []Round {
	if capacity < 1 {
		capacity = 1
	}
	ordered := sortBySequence(rounds)

	var flat []Entry
	for _, r := range ordered {
		flat = append(flat, r.Entries...)
	}
	flat = fastTrackFirst(flat)

	var owner UserID
	if len(ordered) > 0 {
		owner = ordered[0].UserID
	}

	out := make([]Round, 0, (len(flat)+capacity-1)/capacity)
	for start := 0; start < len(flat); start += capacity {
		end := min(start+capacity, len(flat))

		var r Round
		if i := len(out); i < len(ordered) {
			r = ordered[i]
		} else {
			r = env.newRound(owner)
		}
		r.Entries = append([]Entry(nil), flat[start:end]...)
		r.Sequence = len(out) + 1
		out = append(out, r)
	}
	return out
}

// ConsolidateSnapshot consolidates the pending rounds of snap and renumbers
// them after the current round, which is left untouched.
func ConsolidateSnapshot(env Env, snap Snapshot, capacity int) (Snapshot, error) {
	if err := ValidateCapacity(capacity); err != nil {
		return Snapshot{}, err
	}
	if err := snap.checkOwnership(); err != nil {
		return Snapshot{}, err
	}
	out := snap.Clone()
	out.Pending = Consolidate(env, out.Pending, capacity)
	for i := range out.Pending {
		out.Pending[i].UserID = snap.UserID
	}
	return Resequence(out), nil
}
