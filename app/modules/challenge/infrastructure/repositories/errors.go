package challengedb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested challenge does not exist.
	ErrNotFound = errors.New("challenge not found")

	// ErrNoRowsAffected indicates an UPDATE/DELETE matched no rows.
	ErrNoRowsAffected = errors.New("no rows affected")
)
