package accountservice

import (
	"context"

	accountdomain "github.com/Black-And-White-Club/antrian/app/modules/account/domain"
	queuedomain "github.com/Black-And-White-Club/antrian/app/modules/queue/domain"
)

// Service manages per-user queue settings. It also serves as the queue
// module's settings reader.
type Service interface {
	GetSettings(ctx context.Context, userID int64) (*accountdomain.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, update accountdomain.Update) (*accountdomain.Settings, error)

	QueueSettings(ctx context.Context, userID int64) (queuedomain.Settings, error)
	ResolveUsername(ctx context.Context, username string) (int64, error)
}
