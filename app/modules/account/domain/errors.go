package accountdomain

import (
	"fmt"

	"github.com/Black-And-White-Club/antrian/pkg/errkind"
)

var (
	ErrInvalidGamesPerRound = fmt.Errorf("games per round must be between 1 and %d: %w", MaxGamesPerRound, errkind.Configuration)
	ErrInvalidUsername      = fmt.Errorf("username must be %d to %d characters of a-z, 0-9, '-' or '_': %w", MinUsernameLength, MaxUsernameLength, errkind.InvalidRequest)
	ErrEmptyUpdate          = fmt.Errorf("update names no field: %w", errkind.InvalidRequest)
	ErrUsernameTaken        = fmt.Errorf("username is already taken: %w", errkind.StateConflict)
	ErrUserNotFound         = fmt.Errorf("user not found: %w", errkind.NotFound)
)
