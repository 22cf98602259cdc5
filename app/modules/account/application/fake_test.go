package accountservice

import (
	"context"
	"sync"

	accountdb "github.com/Black-And-White-Club/antrian/app/modules/account/infrastructure/repositories"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Repository
// ------------------------

// FakeRepo keeps rows in memory unless a XFunc overrides the method.
type FakeRepo struct {
	mu   sync.Mutex
	rows map[int64]accountdb.QueueSettings

	GetFunc           func(ctx context.Context, db bun.IDB, userID int64) (*accountdb.QueueSettings, error)
	GetForUpdateFunc  func(ctx context.Context, db bun.IDB, userID int64) (*accountdb.QueueSettings, error)
	GetByUsernameFunc func(ctx context.Context, db bun.IDB, username string) (*accountdb.QueueSettings, error)
	UpsertFunc        func(ctx context.Context, db bun.IDB, settings *accountdb.QueueSettings) error
}

func NewFakeRepo(rows ...accountdb.QueueSettings) *FakeRepo {
	f := &FakeRepo{rows: make(map[int64]accountdb.QueueSettings)}
	for _, r := range rows {
		f.rows[r.UserID] = r
	}
	return f
}

func (f *FakeRepo) lookup(userID int64) (*accountdb.QueueSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[userID]
	if !ok {
		return nil, accountdb.ErrNotFound
	}
	return &row, nil
}

func (f *FakeRepo) Get(ctx context.Context, db bun.IDB, userID int64) (*accountdb.QueueSettings, error) {
	if f.GetFunc != nil {
		return f.GetFunc(ctx, db, userID)
	}
	return f.lookup(userID)
}

func (f *FakeRepo) GetForUpdate(ctx context.Context, db bun.IDB, userID int64) (*accountdb.QueueSettings, error) {
	if f.GetForUpdateFunc != nil {
		return f.GetForUpdateFunc(ctx, db, userID)
	}
	return f.lookup(userID)
}

func (f *FakeRepo) GetByUsername(ctx context.Context, db bun.IDB, username string) (*accountdb.QueueSettings, error) {
	if f.GetByUsernameFunc != nil {
		return f.GetByUsernameFunc(ctx, db, username)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Username != nil && *row.Username == username {
			r := row
			return &r, nil
		}
	}
	return nil, accountdb.ErrNotFound
}

func (f *FakeRepo) Upsert(ctx context.Context, db bun.IDB, settings *accountdb.QueueSettings) error {
	if f.UpsertFunc != nil {
		return f.UpsertFunc(ctx, db, settings)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if settings.Username != nil {
		for id, row := range f.rows {
			if id != settings.UserID && row.Username != nil && *row.Username == *settings.Username {
				return accountdb.ErrUsernameConflict
			}
		}
	}
	f.rows[settings.UserID] = *settings
	return nil
}

var _ accountdb.Repository = (*FakeRepo)(nil)

// ------------------------
// Fake Publisher
// ------------------------

type FakePublisher struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
	Err      error
}

func (f *FakePublisher) Publish(topic string, msgs ...*message.Message) error {
	if f.Err != nil {
		return f.Err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.messages == nil {
		f.messages = make(map[string][]*message.Message)
	}
	f.messages[topic] = append(f.messages[topic], msgs...)
	return nil
}

func (f *FakePublisher) Close() error { return nil }

func (f *FakePublisher) Messages(topic string) []*message.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages[topic]
}
