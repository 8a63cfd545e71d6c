package shared

import "errors"

var (
	// ErrIdempotencyConflict indicates a key reused with a different request body.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	// ErrIdempotencyInFlight indicates the original request is still being processed.
	ErrIdempotencyInFlight = errors.New("idempotent request still in progress")
)
