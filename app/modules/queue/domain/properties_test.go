package queuedomain

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// randomSnapshot builds a valid snapshot with pre-sorted rounds.
func randomSnapshot(f *gofakeit.Faker, capacity int) Snapshot {
	labels := []string{"G1", "G2", "G3", "G4", "G5", "G6"}
	snap := Snapshot{UserID: testUser}

	n := f.Number(0, 5)
	for i := 0; i < n; i++ {
		r := pending(int64(i+1), i+1)
		for j := f.Number(0, capacity); j > 0; j-- {
			r.Entries = append(r.Entries, entry(f.RandomString(labels), f.Bool()))
		}
		r.Entries = fastTrackFirst(r.Entries)
		snap.Pending = append(snap.Pending, r)
	}
	if n > 0 && f.Bool() {
		cur := snap.Pending[0]
		cur.Status = StatusCurrent
		snap.Current = &cur
		snap.Pending = snap.Pending[1:]
	}
	return Resequence(snap)
}

func randomRequests(f *gofakeit.Faker) []Request {
	labels := []string{"G1", "G2", "G3", "G7", "G8"}
	out := make([]Request, f.Number(0, 6))
	for i := range out {
		out[i] = Request{Label: f.RandomString(labels), FastTrack: f.Bool(), Count: f.Number(0, 3)}
	}
	return out
}

func entryIDs(snap Snapshot) map[uuid.UUID]int {
	ids := map[uuid.UUID]int{}
	for _, r := range snap.Rounds() {
		for _, e := range r.Entries {
			ids[e.ID]++
		}
	}
	return ids
}

func TestProperties_Assign(t *testing.T) {
	f := gofakeit.New(20260314)

	for iter := 0; iter < 300; iter++ {
		capacity := f.Number(1, 5)
		snap := randomSnapshot(f, capacity)
		reqs := randomRequests(f)

		out, err := Assign(Env{}, snap, reqs, capacity, AssignOptions{})
		require.NoError(t, err)

		// P1, P3 and fast-track order all fall under Validate.
		require.NoError(t, Validate(out.Snapshot, capacity), "iteration %d", iter)

		// P2: inputs plus exactly the created entries.
		want := entryIDs(snap)
		for _, e := range out.Added {
			want[e.ID]++
		}
		assert.Equal(t, want, entryIDs(out.Snapshot), "iteration %d", iter)

		requested := 0
		for _, r := range reqs {
			requested += r.copies()
		}
		assert.Len(t, out.Added, requested)

		if snap.Current != nil {
			assert.Equal(t, labelsOf(*snap.Current), labelsOf(*out.Snapshot.Current), "current round excluded")
		}
	}
}

func TestProperties_Consolidate(t *testing.T) {
	f := gofakeit.New(777)

	for iter := 0; iter < 300; iter++ {
		capacity := f.Number(1, 5)
		snap := randomSnapshot(f, capacity+2)
		// Break the invariants the way manual moves do.
		for i := range snap.Pending {
			r := &snap.Pending[i]
			shuffled := append([]Entry(nil), r.Entries...)
			f.ShuffleAnySlice(shuffled)
			r.Entries = shuffled
		}

		once := Consolidate(Env{}, snap.Pending, capacity)
		twice := Consolidate(Env{}, once, capacity)

		total := 0
		for i, r := range once {
			total += len(r.Entries)
			assert.LessOrEqual(t, len(r.Entries), capacity, "P1")
			assert.Equal(t, i+1, r.Sequence, "P3")
			sawRegular := false
			for _, e := range r.Entries {
				assert.False(t, e.FastTrack && sawRegular, "P6")
				sawRegular = sawRegular || !e.FastTrack
			}
		}
		assert.Equal(t, Snapshot{Pending: snap.Pending}.EntryCount(), total)

		if diff := cmp.Diff(once, twice, roundIDComparer); diff != "" {
			t.Fatalf("P4 violated at iteration %d (-once +twice):\n%s", iter, diff)
		}
	}
}
