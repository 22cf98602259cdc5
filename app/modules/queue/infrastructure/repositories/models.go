package queuedb

import (
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Round is a persisted round. ID is zero until the row is inserted.
type Round struct {
	bun.BaseModel `bun:"table:queue_rounds,alias:qr"`
	ID            int64      `bun:"id,pk,autoincrement"`
	UserID        int64      `bun:"user_id,notnull"`
	Sequence      int        `bun:"sequence,notnull"`
	Status        string     `bun:"status,notnull"`
	ArchivedAt    *time.Time `bun:"archived_at"`
	CreatedAt     time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time  `bun:",nullzero,notnull,default:current_timestamp"`
	Entries       []*Entry   `bun:"rel:has-many,join:id=round_id"`
}

// Entry is a persisted queue entry. Position orders entries inside a round.
type Entry struct {
	bun.BaseModel `bun:"table:queue_entries,alias:qe"`
	ID            uuid.UUID `bun:"id,pk,type:uuid"`
	RoundID       int64     `bun:"round_id,notnull"`
	Position      int       `bun:"position,notnull"`
	Label         string    `bun:"label,notnull"`
	FastTrack     bool      `bun:"fast_track,notnull"`
	CreatedAt     time.Time `bun:",nullzero,notnull,default:current_timestamp"`
}

// ToDomain converts the row and its entries.
func (r *Round) ToDomain() queuedomain.Round {
	out := queuedomain.Round{
		ID:         queuedomain.DurableID(r.ID),
		UserID:     queuedomain.UserID(r.UserID),
		Sequence:   r.Sequence,
		Status:     queuedomain.Status(r.Status),
		ArchivedAt: r.ArchivedAt,
		CreatedAt:  r.CreatedAt,
		Entries:    make([]queuedomain.Entry, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		out.Entries = append(out.Entries, queuedomain.Entry{
			ID:        e.ID,
			Label:     e.Label,
			FastTrack: e.FastTrack,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

// FromDomain converts a domain round. Provisional rounds map to ID zero.
func FromDomain(r queuedomain.Round) *Round {
	id, _ := r.ID.Durable()
	out := &Round{
		ID:         id,
		UserID:     int64(r.UserID),
		Sequence:   r.Sequence,
		Status:     string(r.Status),
		ArchivedAt: r.ArchivedAt,
		CreatedAt:  r.CreatedAt,
		Entries:    make([]*Entry, 0, len(r.Entries)),
	}
	for i, e := range r.Entries {
		out.Entries = append(out.Entries, &Entry{
			ID:        e.ID,
			RoundID:   id,
			Position:  i,
			Label:     e.Label,
			FastTrack: e.FastTrack,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}
