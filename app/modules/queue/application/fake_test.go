package queueservice

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
	queuedb "github.com/Black-And-White-Club/antrian/app/modules/queue/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Queue Repo
// ------------------------

// FakeQueueRepo records calls and, unless a XFunc override is set, keeps
// rounds in memory.
type FakeQueueRepo struct {
	trace  []string
	saves  []string
	rounds map[int64]*queuedb.Round
	nextID int64

	LockUserFunc            func(ctx context.Context, db bun.IDB, userID int64) error
	LoadRoundsFunc          func(ctx context.Context, db bun.IDB, userID int64) ([]*queuedb.Round, error)
	LoadCurrentRoundFunc    func(ctx context.Context, db bun.IDB, userID int64) (*queuedb.Round, error)
	GetRoundFunc            func(ctx context.Context, db bun.IDB, userID, roundID int64) (*queuedb.Round, error)
	SaveRoundFunc           func(ctx context.Context, db bun.IDB, round *queuedb.Round) error
	DeleteRoundFunc         func(ctx context.Context, db bun.IDB, userID, roundID int64) error
	ListArchivedFunc        func(ctx context.Context, db bun.IDB, userID int64, since *time.Time) ([]*queuedb.Round, error)
	DeleteAllArchivedFunc   func(ctx context.Context, db bun.IDB, userID int64) (int64, error)
	PurgeArchivedBeforeFunc func(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error)
}

func NewFakeQueueRepo(seed ...*queuedb.Round) *FakeQueueRepo {
	f := &FakeQueueRepo{
		trace:  []string{},
		rounds: map[int64]*queuedb.Round{},
		nextID: 100,
	}
	for _, r := range seed {
		f.rounds[r.ID] = copyRound(r)
	}
	return f
}

func (f *FakeQueueRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func copyRound(r *queuedb.Round) *queuedb.Round {
	out := *r
	out.Entries = make([]*queuedb.Entry, 0, len(r.Entries))
	for i, e := range r.Entries {
		ec := *e
		ec.RoundID = r.ID
		ec.Position = i
		out.Entries = append(out.Entries, &ec)
	}
	return &out
}

func (f *FakeQueueRepo) selectRounds(keep func(*queuedb.Round) bool) []*queuedb.Round {
	var out []*queuedb.Round
	for _, r := range f.rounds {
		if keep(r) {
			out = append(out, copyRound(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sequence != out[j].Sequence {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// --- Repository Interface Implementation ---

func (f *FakeQueueRepo) LockUser(ctx context.Context, db bun.IDB, userID int64) error {
	f.record("LockUser")
	if f.LockUserFunc != nil {
		return f.LockUserFunc(ctx, db, userID)
	}
	return nil
}

func (f *FakeQueueRepo) LoadRounds(ctx context.Context, db bun.IDB, userID int64) ([]*queuedb.Round, error) {
	f.record("LoadRounds")
	if f.LoadRoundsFunc != nil {
		return f.LoadRoundsFunc(ctx, db, userID)
	}
	return f.selectRounds(func(r *queuedb.Round) bool {
		return r.UserID == userID && r.Status == string(queuedomain.StatusPending)
	}), nil
}

func (f *FakeQueueRepo) LoadCurrentRound(ctx context.Context, db bun.IDB, userID int64) (*queuedb.Round, error) {
	f.record("LoadCurrentRound")
	if f.LoadCurrentRoundFunc != nil {
		return f.LoadCurrentRoundFunc(ctx, db, userID)
	}
	found := f.selectRounds(func(r *queuedb.Round) bool {
		return r.UserID == userID && r.Status == string(queuedomain.StatusCurrent)
	})
	if len(found) == 0 {
		return nil, queuedb.ErrNotFound
	}
	return found[0], nil
}

func (f *FakeQueueRepo) GetRound(ctx context.Context, db bun.IDB, userID, roundID int64) (*queuedb.Round, error) {
	f.record("GetRound")
	if f.GetRoundFunc != nil {
		return f.GetRoundFunc(ctx, db, userID, roundID)
	}
	r, ok := f.rounds[roundID]
	if !ok || r.UserID != userID {
		return nil, queuedb.ErrNotFound
	}
	return copyRound(r), nil
}

func (f *FakeQueueRepo) SaveRound(ctx context.Context, db bun.IDB, round *queuedb.Round) error {
	f.record("SaveRound")
	if f.SaveRoundFunc != nil {
		return f.SaveRoundFunc(ctx, db, round)
	}
	if round.ID == 0 {
		f.nextID++
		round.ID = f.nextID
	} else if old, ok := f.rounds[round.ID]; !ok || old.UserID != round.UserID {
		return queuedb.ErrNotFound
	}
	f.saves = append(f.saves, fmt.Sprintf("%d:%s", round.ID, round.Status))
	f.rounds[round.ID] = copyRound(round)
	return nil
}

func (f *FakeQueueRepo) DeleteRound(ctx context.Context, db bun.IDB, userID, roundID int64) error {
	f.record("DeleteRound")
	if f.DeleteRoundFunc != nil {
		return f.DeleteRoundFunc(ctx, db, userID, roundID)
	}
	r, ok := f.rounds[roundID]
	if !ok || r.UserID != userID {
		return queuedb.ErrNotFound
	}
	delete(f.rounds, roundID)
	return nil
}

func (f *FakeQueueRepo) ListArchived(ctx context.Context, db bun.IDB, userID int64, since *time.Time) ([]*queuedb.Round, error) {
	f.record("ListArchived")
	if f.ListArchivedFunc != nil {
		return f.ListArchivedFunc(ctx, db, userID, since)
	}
	out := f.selectRounds(func(r *queuedb.Round) bool {
		if r.UserID != userID || r.Status != string(queuedomain.StatusArchived) {
			return false
		}
		return since == nil || !r.ArchivedAt.Before(*since)
	})
	slices.SortStableFunc(out, func(a, b *queuedb.Round) int {
		return b.ArchivedAt.Compare(*a.ArchivedAt)
	})
	return out, nil
}

func (f *FakeQueueRepo) DeleteAllArchived(ctx context.Context, db bun.IDB, userID int64) (int64, error) {
	f.record("DeleteAllArchived")
	if f.DeleteAllArchivedFunc != nil {
		return f.DeleteAllArchivedFunc(ctx, db, userID)
	}
	var n int64
	for id, r := range f.rounds {
		if r.UserID == userID && r.Status == string(queuedomain.StatusArchived) {
			delete(f.rounds, id)
			n++
		}
	}
	return n, nil
}

func (f *FakeQueueRepo) PurgeArchivedBefore(ctx context.Context, db bun.IDB, cutoff time.Time) (int64, error) {
	f.record("PurgeArchivedBefore")
	if f.PurgeArchivedBeforeFunc != nil {
		return f.PurgeArchivedBeforeFunc(ctx, db, cutoff)
	}
	var n int64
	for id, r := range f.rounds {
		if r.Status == string(queuedomain.StatusArchived) && r.ArchivedAt.Before(cutoff) {
			delete(f.rounds, id)
			n++
		}
	}
	return n, nil
}

// --- Accessors for assertions ---

func (f *FakeQueueRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeQueueRepo) Saves() []string {
	return slices.Clone(f.saves)
}

func (f *FakeQueueRepo) Stored(id int64) (*queuedb.Round, bool) {
	r, ok := f.rounds[id]
	if !ok {
		return nil, false
	}
	return copyRound(r), true
}

var _ queuedb.Repository = (*FakeQueueRepo)(nil)

// ------------------------
// Fake Settings Reader
// ------------------------

type FakeSettings struct {
	Settings queuedomain.Settings
	Users    map[string]int64
	Err      error

	QueueSettingsFunc func(ctx context.Context, userID int64) (queuedomain.Settings, error)
}

func (f *FakeSettings) QueueSettings(ctx context.Context, userID int64) (queuedomain.Settings, error) {
	if f.QueueSettingsFunc != nil {
		return f.QueueSettingsFunc(ctx, userID)
	}
	return f.Settings, f.Err
}

func (f *FakeSettings) ResolveUsername(_ context.Context, username string) (int64, error) {
	if id, ok := f.Users[username]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("user %q: %w", username, queuedomain.ErrNotFound)
}

var _ SettingsReader = (*FakeSettings)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu     sync.Mutex
	topics []string
	Err    error
}

func (p *FakePublisher) Publish(topic string, _ ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return p.Err
}

func (p *FakePublisher) Close() error { return nil }

func (p *FakePublisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.topics)
}

var _ message.Publisher = (*FakePublisher)(nil)
