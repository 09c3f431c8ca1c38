package challengedb

import (
	"context"
	"time"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for challenge persistence. Every method
// takes a bun.IDB so callers can run it inside their own transaction; a nil
// db falls back to the repository's pool.
type Repository interface {
	CreateChallenge(ctx context.Context, db bun.IDB, c *Challenge) error
	UpdateChallenge(ctx context.Context, db bun.IDB, c *Challenge) error
	GetChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*Challenge, error)
	ListChallenges(ctx context.Context, db bun.IDB) ([]Challenge, error)

	// LockChallenge reads the row with SELECT ... FOR UPDATE. Must be called
	// within a transaction; it serializes every award and reversal of id.
	LockChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*Challenge, error)

	GetPrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID) ([]uuid.UUID, error)
	GetPrerequisiteGraph(ctx context.Context, db bun.IDB) (challengedomain.Graph, error)
	ReplacePrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID, requiredCount int, prerequisites []uuid.UUID) error

	// AcquireGraphLock takes a transaction-scoped advisory lock so two
	// concurrent edits cannot each pass validation and jointly form a cycle.
	AcquireGraphLock(ctx context.Context, db bun.IDB) error

	// ClaimExclusive flips locked from false to true and reports whether this
	// caller won.
	ClaimExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error)
	// ReleaseExclusive flips locked from true to false.
	ReleaseExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error)
	CountSolvingCohorts(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error)

	ListDueReleases(ctx context.Context, db bun.IDB, now time.Time) ([]Challenge, error)
	MarkReleased(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error)
}
