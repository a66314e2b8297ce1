package services

import "errors"

// Sentinel errors returned by the engine. Controllers map these onto HTTP
// responses; resolvers never return them for "no result", which is a normal
// value (empty set, false).
var (
	// ErrNotFound means a referenced user, campaign or evidence link does not
	// exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means an access decision returned false for an operation
	// that requires authorization.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidStatus means a validation transition used a status outside the
	// pending/approved/rejected enum. Callers validate input before invoking
	// the state machine, so seeing this at the boundary is a programmer error.
	ErrInvalidStatus = errors.New("invalid validation status")
)
