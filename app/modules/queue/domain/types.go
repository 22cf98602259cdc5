package queuedomain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserID identifies the owner of a queue. Every operation is scoped by it.
type UserID int64

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

const provisionalPrefix = "provisional-"

// RoundID is either a durable id assigned by storage or a provisional token
// for a round that only exists in memory so far.
type RoundID struct {
	durable int64
	token   uuid.UUID
}

// DurableID wraps an id assigned by storage.
func DurableID(id int64) RoundID { return RoundID{durable: id} }

// ProvisionalID wraps a token for a round not yet persisted.
func ProvisionalID(token uuid.UUID) RoundID { return RoundID{token: token} }

func (id RoundID) IsProvisional() bool { return id.token != uuid.Nil }

func (id RoundID) IsZero() bool { return id.durable == 0 && id.token == uuid.Nil }

// Durable returns the storage id and whether the round has one.
func (id RoundID) Durable() (int64, bool) {
	if id.IsProvisional() || id.durable == 0 {
		return 0, false
	}
	return id.durable, true
}

// Token returns the provisional token, or uuid.Nil for durable ids.
func (id RoundID) Token() uuid.UUID { return id.token }

func (id RoundID) String() string {
	if id.IsProvisional() {
		return provisionalPrefix + id.token.String()
	}
	return strconv.FormatInt(id.durable, 10)
}

// ParseRoundID accepts the forms produced by String.
func ParseRoundID(s string) (RoundID, error) {
	if rest, ok := strings.CutPrefix(s, provisionalPrefix); ok {
		token, err := uuid.Parse(rest)
		if err != nil || token == uuid.Nil {
			return RoundID{}, fmt.Errorf("invalid provisional round id %q: %w", s, ErrInvalidRequest)
		}
		return ProvisionalID(token), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return RoundID{}, fmt.Errorf("invalid round id %q: %w", s, ErrInvalidRequest)
	}
	return DurableID(n), nil
}

func (id RoundID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *RoundID) UnmarshalText(b []byte) error {
	parsed, err := ParseRoundID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Status of a round.
type Status string

const (
	StatusPending  Status = "pending"
	StatusCurrent  Status = "current"
	StatusArchived Status = "archived"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCurrent, StatusArchived:
		return true
	default:
		return false
	}
}

// Entry is one queued label. ID and FastTrack never change after creation.
type Entry struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label"`
	FastTrack bool      `json:"fast_track"`
	CreatedAt time.Time `json:"created_at"`
}

// Round is an ordered batch of entries. Fast-track entries are stored ahead
// of regular ones whenever an engine function writes the round.
type Round struct {
	ID         RoundID    `json:"id"`
	UserID     UserID     `json:"user_id"`
	Sequence   int        `json:"sequence"`
	Status     Status     `json:"status"`
	Entries    []Entry    `json:"entries"`
	ArchivedAt *time.Time `json:"archived_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MarshalJSON encodes a round without entries as "entries":[].
func (r Round) MarshalJSON() ([]byte, error) {
	type plain Round
	if r.Entries == nil {
		r.Entries = []Entry{}
	}
	return json.Marshal(plain(r))
}

// Clone returns a deep copy.
func (r Round) Clone() Round {
	out := r
	out.Entries = slices.Clone(r.Entries)
	if r.ArchivedAt != nil {
		t := *r.ArchivedAt
		out.ArchivedAt = &t
	}
	return out
}

// HasLabel reports whether any entry carries label.
func (r Round) HasLabel(label string) bool {
	for _, e := range r.Entries {
		if e.Label == label {
			return true
		}
	}
	return false
}

func (r Round) hasSpace(capacity int) bool { return len(r.Entries) < capacity }

func (r Round) fastTrackCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.FastTrack {
			n++
		}
	}
	return n
}

// Request asks for Count copies of Label. A zero Count means one.
type Request struct {
	Label     string `json:"label"`
	FastTrack bool   `json:"fast_track"`
	Count     int    `json:"count"`
}

// MaxRepeatCount bounds Request.Count.
const MaxRepeatCount = 100

func (r Request) copies() int {
	if r.Count == 0 {
		return 1
	}
	return r.Count
}

// Validate checks the label and repeat count.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return ErrEmptyLabel
	}
	if r.Count < 0 || r.Count > MaxRepeatCount {
		return fmt.Errorf("count %d outside 0..%d: %w", r.Count, MaxRepeatCount, ErrInvalidRequest)
	}
	return nil
}

// Snapshot is the non-archived state of one user's queue.
type Snapshot struct {
	UserID  UserID  `json:"user_id"`
	Current *Round  `json:"current,omitempty"`
	Pending []Round `json:"pending"`
}

// MarshalJSON encodes an empty queue as "pending":[].
func (s Snapshot) MarshalJSON() ([]byte, error) {
	type plain Snapshot
	if s.Pending == nil {
		s.Pending = []Round{}
	}
	return json.Marshal(plain(s))
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{UserID: s.UserID}
	if s.Current != nil {
		c := s.Current.Clone()
		out.Current = &c
	}
	out.Pending = slices.Clone(s.Pending)
	for i := range out.Pending {
		out.Pending[i] = out.Pending[i].Clone()
	}
	return out
}

// Rounds lists the current round first, then pending rounds in order.
func (s Snapshot) Rounds() []Round {
	out := make([]Round, 0, len(s.Pending)+1)
	if s.Current != nil {
		out = append(out, *s.Current)
	}
	return append(out, s.Pending...)
}

// Find looks a round up by id.
func (s Snapshot) Find(id RoundID) (Round, bool) {
	for _, r := range s.Rounds() {
		if r.ID == id {
			return r, true
		}
	}
	return Round{}, false
}

// EntryCount is the number of entries over all rounds.
func (s Snapshot) EntryCount() int {
	n := 0
	for _, r := range s.Rounds() {
		n += len(r.Entries)
	}
	return n
}

func (s Snapshot) checkOwnership() error {
	for _, r := range s.Rounds() {
		if r.UserID != s.UserID {
			return fmt.Errorf("round %s: %w", r.ID, ErrRoundNotFound)
		}
		if r.Status == StatusArchived {
			return fmt.Errorf("round %s: %w", r.ID, ErrRoundArchived)
		}
	}
	return nil
}

// Env supplies identifiers and the clock to engine functions. Zero values
// fall back to uuid.New and time.Now.
type Env struct {
	NewID func() uuid.UUID
	Now   func() time.Time
}

func (e Env) newID() uuid.UUID {
	if e.NewID == nil {
		return uuid.New()
	}
	return e.NewID()
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now()
}

func (e Env) newRound(userID UserID) Round {
	return Round{
		ID:        ProvisionalID(e.newID()),
		UserID:    userID,
		Status:    StatusPending,
		CreatedAt: e.now(),
	}
}
