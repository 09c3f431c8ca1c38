package challengeservice

import "errors"

// Domain errors for the challenge service. They are returned as Failure
// payloads, never as the operation error.
var (
	// ErrChallengeNotFound indicates the challenge id does not exist.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrNotUnlocking indicates prerequisites were set on a non-unlocking challenge.
	ErrNotUnlocking = errors.New("prerequisites only apply to unlocking challenges")

	// ErrLockedTypeChange indicates an edit would change the type of a claimed
	// exclusive challenge.
	ErrLockedTypeChange = errors.New("claimed exclusive challenge cannot change type")

	// ErrExclusiveConflict indicates a challenge already completed by several
	// cohorts cannot become exclusive.
	ErrExclusiveConflict = errors.New("challenge already completed by more than one cohort")

	// ErrReleaseTime indicates a release time could not be parsed or is in the past.
	ErrReleaseTime = errors.New("invalid release time")
)

// errRollback aborts a transaction whose operation produced a Failure.
var errRollback = errors.New("rollback on failure result")
