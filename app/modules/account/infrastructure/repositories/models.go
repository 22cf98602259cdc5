package accountdb

import (
	"time"

	accountdomain "github.com/Black-And-White-Club/antrian/app/modules/account/domain"
	"github.com/uptrace/bun"
)

// QueueSettings is a row of queue_settings.
type QueueSettings struct {
	bun.BaseModel `bun:"table:queue_settings,alias:qs"`

	UserID           int64     `bun:"user_id,pk"`
	Username         *string   `bun:"username"`
	GamesPerRound    *int      `bun:"games_per_round"`
	FastTrackEnabled bool      `bun:"fast_track_enabled,notnull"`
	UpdatedAt        time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// ToDomain converts the row. Capacity is left for the service to fill.
func (m *QueueSettings) ToDomain() accountdomain.Settings {
	s := accountdomain.Settings{
		UserID:           m.UserID,
		FastTrackEnabled: m.FastTrackEnabled,
		UpdatedAt:        m.UpdatedAt,
	}
	if m.Username != nil {
		s.Username = *m.Username
	}
	if m.GamesPerRound != nil {
		n := *m.GamesPerRound
		s.GamesPerRound = &n
	}
	return s
}

// FromDomain builds a row. An empty username is stored as NULL so the
// unique index ignores it.
func FromDomain(s accountdomain.Settings) *QueueSettings {
	m := &QueueSettings{
		UserID:           s.UserID,
		FastTrackEnabled: s.FastTrackEnabled,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.Username != "" {
		name := s.Username
		m.Username = &name
	}
	if s.GamesPerRound != nil {
		n := *s.GamesPerRound
		m.GamesPerRound = &n
	}
	return m
}
