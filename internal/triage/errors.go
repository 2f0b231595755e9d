package triage

import (
	"errors"
	"fmt"

	"github.com/mixelka/emailtriage/internal/store"
)

var (
	// ErrNotFound is returned when a referenced message does not exist
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input
	ErrValidation = errors.New("validation failed")
	// ErrStoreUnavailable is returned when the message store fails
	ErrStoreUnavailable = errors.New("store unavailable")
)

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(id string) error {
	return fmt.Errorf("%w: message %s", ErrNotFound, id)
}

// storeError classifies a store failure. Missing records become ErrNotFound,
// everything else is a collaborator failure.
func storeError(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: failed to %s: %w", ErrStoreUnavailable, op, err)
}
