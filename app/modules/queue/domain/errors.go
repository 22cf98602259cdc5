package queuedomain

import (
	"fmt"

	"github.com/Black-And-White-Club/antrian/pkg/errkind"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrConfiguration    = errkind.Configuration
	ErrInvalidRequest   = errkind.InvalidRequest
	ErrNotFound         = errkind.NotFound
	ErrStateConflict    = errkind.StateConflict
	ErrTransientStorage = errkind.TransientStorage
)

var (
	ErrInvalidCapacity   = fmt.Errorf("capacity must be at least 1: %w", ErrConfiguration)
	ErrEmptyLabel        = fmt.Errorf("label must not be empty: %w", ErrInvalidRequest)
	ErrRoundNotFound     = fmt.Errorf("round not found: %w", ErrNotFound)
	ErrEntryNotFound     = fmt.Errorf("entry index out of range: %w", ErrNotFound)
	ErrNoCurrentRound    = fmt.Errorf("no current round: %w", ErrStateConflict)
	ErrRoundArchived     = fmt.Errorf("round is archived: %w", ErrStateConflict)
	ErrRoundNotArchived  = fmt.Errorf("round is not archived: %w", ErrStateConflict)
	ErrFastTrackDisabled = fmt.Errorf("fast track is disabled: %w", ErrStateConflict)
)

// KindOf returns the error kind wrapped by err, or nil when err carries none.
func KindOf(err error) error { return errkind.Of(err) }

// Transient marks err as a storage failure the caller may resync and retry.
func Transient(err error) error { return errkind.Transient(err) }
