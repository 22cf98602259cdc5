// Package errkind declares the error kinds shared by every module. Specific
// errors wrap exactly one kind so transports can map them with errors.Is.
package errkind

import (
	"errors"
	"fmt"
)

var (
	Configuration    = errors.New("configuration error")
	InvalidRequest   = errors.New("invalid request")
	NotFound         = errors.New("not found")
	StateConflict    = errors.New("state conflict")
	TransientStorage = errors.New("transient storage error")
)

var all = []error{
	Configuration,
	InvalidRequest,
	NotFound,
	StateConflict,
	TransientStorage,
}

// Of returns the kind wrapped by err, or nil when err carries none.
func Of(err error) error {
	for _, k := range all {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Transient marks err as a storage failure the caller may retry. Errors
// already marked are returned unchanged.
func Transient(err error) error {
	if err == nil || errors.Is(err, TransientStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", TransientStorage, err)
}
