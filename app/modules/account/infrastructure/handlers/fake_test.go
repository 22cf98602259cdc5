package accounthandlers

import (
	"context"

	accountservice "github.com/Black-And-White-Club/antrian/app/modules/account/application"
	accountdomain "github.com/Black-And-White-Club/antrian/app/modules/account/domain"
	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
)

// ------------------------
// Fake Service
// ------------------------

type FakeService struct {
	GetSettingsFunc     func(ctx context.Context, userID int64) (*accountdomain.Settings, error)
	UpdateSettingsFunc  func(ctx context.Context, userID int64, update accountdomain.Update) (*accountdomain.Settings, error)
	QueueSettingsFunc   func(ctx context.Context, userID int64) (queuedomain.Settings, error)
	ResolveUsernameFunc func(ctx context.Context, username string) (int64, error)
}

var _ accountservice.Service = (*FakeService)(nil)

func (f *FakeService) GetSettings(ctx context.Context, userID int64) (*accountdomain.Settings, error) {
	if f.GetSettingsFunc != nil {
		return f.GetSettingsFunc(ctx, userID)
	}
	return &accountdomain.Settings{UserID: userID}, nil
}

func (f *FakeService) UpdateSettings(ctx context.Context, userID int64, update accountdomain.Update) (*accountdomain.Settings, error) {
	if f.UpdateSettingsFunc != nil {
		return f.UpdateSettingsFunc(ctx, userID, update)
	}
	s := update.Apply(accountdomain.Settings{UserID: userID})
	return &s, nil
}

func (f *FakeService) QueueSettings(ctx context.Context, userID int64) (queuedomain.Settings, error) {
	if f.QueueSettingsFunc != nil {
		return f.QueueSettingsFunc(ctx, userID)
	}
	return queuedomain.Settings{}, nil
}

func (f *FakeService) ResolveUsername(ctx context.Context, username string) (int64, error) {
	if f.ResolveUsernameFunc != nil {
		return f.ResolveUsernameFunc(ctx, username)
	}
	return 0, accountdomain.ErrUserNotFound
}
