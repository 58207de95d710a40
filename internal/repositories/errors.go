package repositories

import "errors"

// Storage-level sentinel errors. Services translate these into their own
// error kinds; handlers never see them directly.
var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint,
	// e.g. registering an already-taken username.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotCompleted is returned by MarkIncomplete when the (user, card)
	// pair has no completed record to reset.
	ErrNotCompleted = errors.New("no completed record for this card")
)
