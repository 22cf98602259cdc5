package queuedomain

import (
	"encoding/binary"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

var roundIDComparer = cmp.Comparer(func(a, b RoundID) bool { return a == b })

const testUser UserID = 42

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// seqEnv mints predictable ids so snapshots can be compared structurally.
func seqEnv() Env {
	var n uint32
	return Env{
		NewID: func() uuid.UUID {
			n++
			var id uuid.UUID
			id[0] = 0xaa
			binary.BigEndian.PutUint32(id[12:], n)
			return id
		},
		Now: func() time.Time { return testNow },
	}
}

func entry(label string, fastTrack bool) Entry {
	return Entry{ID: uuid.New(), Label: label, FastTrack: fastTrack, CreatedAt: testNow}
}

func reg(label string) Entry  { return entry(label, false) }
func fast(label string) Entry { return entry(label, true) }

func pending(id int64, seq int, entries ...Entry) Round {
	return Round{
		ID:       DurableID(id),
		UserID:   testUser,
		Sequence: seq,
		Status:   StatusPending,
		Entries:  entries,
	}
}

func current(id int64, entries ...Entry) *Round {
	r := pending(id, 1, entries...)
	r.Status = StatusCurrent
	return &r
}

func labelsOf(r Round) []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Label
	}
	return out
}

func layout(rounds []Round) [][]string {
	out := make([][]string, len(rounds))
	for i, r := range rounds {
		out[i] = labelsOf(r)
	}
	return out
}

func requests(fastTrack bool, labels ...string) []Request {
	out := make([]Request, len(labels))
	for i, l := range labels {
		out[i] = Request{Label: l, FastTrack: fastTrack}
	}
	return out
}
