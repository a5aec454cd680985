package preview

import "errors"

var (
	// ErrNoHostWindow is returned when an operation needs a host and none was given.
	ErrNoHostWindow = errors.New("no host window")
	// ErrInvalidSize rejects a preview size with a non-positive dimension.
	ErrInvalidSize = errors.New("preview size must be positive")
	// ErrBusy rejects a call made while another operation is in flight, typically
	// from inside an event subscriber.
	ErrBusy = errors.New("preview operation already in progress")
	// ErrInternal wraps collaborator failures and recovered panics.
	ErrInternal = errors.New("internal preview fault")
	// ErrNotInitialized is returned when no host has been bound yet.
	ErrNotInitialized = errors.New("preview session not initialized")
	// ErrNotActive is returned by operations that need a visible preview.
	ErrNotActive = errors.New("no active preview")
)
