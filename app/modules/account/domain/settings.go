package accountdomain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

const (
	MaxGamesPerRound  = 64
	MinUsernameLength = 3
	MaxUsernameLength = 32
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// Settings is a user's queue configuration. A nil GamesPerRound means the
// service default applies; Capacity reports the effective value.
type Settings struct {
	UserID           int64     `json:"user_id"`
	Username         string    `json:"username,omitempty"`
	GamesPerRound    *int      `json:"games_per_round"`
	FastTrackEnabled bool      `json:"fast_track_enabled"`
	Capacity         int       `json:"capacity"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
}

// OptionalInt tells an absent JSON field apart from an explicit null.
type OptionalInt struct {
	Set   bool
	Value *int
}

func (o *OptionalInt) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Update is a partial change. Nil or unset fields are left alone; an empty
// Username removes the public name and a null GamesPerRound restores the
// default.
type Update struct {
	Username         *string     `json:"username"`
	GamesPerRound    OptionalInt `json:"games_per_round"`
	FastTrackEnabled *bool       `json:"fast_track_enabled"`
}

// NormalizeUsername lowercases and trims name.
func NormalizeUsername(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Validate checks every field the update sets.
func (u Update) Validate() error {
	if u.Username == nil && !u.GamesPerRound.Set && u.FastTrackEnabled == nil {
		return ErrEmptyUpdate
	}
	if u.Username != nil {
		name := NormalizeUsername(*u.Username)
		if name != "" && (len(name) < MinUsernameLength || len(name) > MaxUsernameLength || !usernamePattern.MatchString(name)) {
			return ErrInvalidUsername
		}
	}
	if u.GamesPerRound.Value != nil {
		if n := *u.GamesPerRound.Value; n < 1 || n > MaxGamesPerRound {
			return ErrInvalidGamesPerRound
		}
	}
	return nil
}

// Apply returns s with the update applied. It does not validate.
func (u Update) Apply(s Settings) Settings {
	if u.Username != nil {
		s.Username = NormalizeUsername(*u.Username)
	}
	if u.GamesPerRound.Set {
		if u.GamesPerRound.Value == nil {
			s.GamesPerRound = nil
		} else {
			n := *u.GamesPerRound.Value
			s.GamesPerRound = &n
		}
	}
	if u.FastTrackEnabled != nil {
		s.FastTrackEnabled = *u.FastTrackEnabled
	}
	return s
}
