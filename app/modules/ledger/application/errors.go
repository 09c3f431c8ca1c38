package ledgerservice

import "errors"

// Domain errors returned as Failure payloads.
var (
	// ErrValidation marks malformed or missing identifiers.
	ErrValidation = errors.New("validation error")

	// ErrNotFound marks an unknown participant, challenge, cohort or completion.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyInvalidated marks a submission that was already reversed.
	ErrAlreadyInvalidated = errors.New("already invalidated")

	// ErrNoCompletion marks a submission that never produced an award.
	ErrNoCompletion = errors.New("submission has no completion to reverse")
)

// ErrTransient wraps a lock or serialization conflict that persisted after
// the single retry. It is returned as the operation error.
var ErrTransient = errors.New("transient store conflict")

var (
	// errRollback aborts a transaction whose operation produced a Failure.
	errRollback = errors.New("rollback on failure result")

	// errClaimLost aborts an award whose exclusivity claim lost the CAS.
	errClaimLost = errors.New("exclusive claim lost")
)
