package approval

import "errors"

// Sentinel errors shared by all Store implementations. Callers detect
// conditions via errors.Is rather than string comparison; implementations
// wrap these with %w and attach context.
var (
	// ErrValidation is returned by Create for malformed input (missing
	// fields, non-positive expiry window). Nothing is persisted.
	ErrValidation = errors.New("approval: invalid request")

	// ErrInvalidState is returned on an attempt to transition a request
	// that is not pending. No mutation occurs.
	ErrInvalidState = errors.New("approval: request is not pending")

	// ErrNotFound is returned when the requested id does not exist.
	ErrNotFound = errors.New("approval: request not found")

	// ErrStoreUnavailable wraps connectivity and transaction failures of
	// the backing store. An operation failing this way has no partial
	// effect and is safe to retry on the next scheduled invocation.
	ErrStoreUnavailable = errors.New("approval: store unavailable")
)
