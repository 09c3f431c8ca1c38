package challengeservice

import (
	"context"
	"time"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Challenge Repo
// ------------------------

// FakeChallengeRepository provides a programmable stub for challengedb.Repository.
type FakeChallengeRepository struct {
	trace []string

	CreateChallengeFunc      func(ctx context.Context, db bun.IDB, c *challengedb.Challenge) error
	UpdateChallengeFunc      func(ctx context.Context, db bun.IDB, c *challengedb.Challenge) error
	GetChallengeFunc         func(ctx context.Context, db bun.IDB, id uuid.UUID) (*challengedb.Challenge, error)
	ListChallengesFunc       func(ctx context.Context, db bun.IDB) ([]challengedb.Challenge, error)
	LockChallengeFunc        func(ctx context.Context, db bun.IDB, id uuid.UUID) (*challengedb.Challenge, error)
	GetPrerequisitesFunc     func(ctx context.Context, db bun.IDB, id uuid.UUID) ([]uuid.UUID, error)
	GetPrerequisiteGraphFunc func(ctx context.Context, db bun.IDB) (challengedomain.Graph, error)
	ReplacePrerequisitesFunc func(ctx context.Context, db bun.IDB, id uuid.UUID, requiredCount int, prerequisites []uuid.UUID) error
	AcquireGraphLockFunc     func(ctx context.Context, db bun.IDB) error
	ClaimExclusiveFunc       func(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error)
	ReleaseExclusiveFunc     func(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error)
	CountSolvingCohortsFunc  func(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error)
	ListDueReleasesFunc      func(ctx context.Context, db bun.IDB, now time.Time) ([]challengedb.Challenge, error)
	MarkReleasedFunc         func(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error)
}

// NewFakeChallengeRepository initializes a new FakeChallengeRepository with an empty trace.
func NewFakeChallengeRepository() *FakeChallengeRepository {
	return &FakeChallengeRepository{trace: []string{}}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeChallengeRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeChallengeRepository) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeChallengeRepository) CreateChallenge(ctx context.Context, db bun.IDB, c *challengedb.Challenge) error {
	f.record("CreateChallenge")
	if f.CreateChallengeFunc != nil {
		return f.CreateChallengeFunc(ctx, db, c)
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (f *FakeChallengeRepository) UpdateChallenge(ctx context.Context, db bun.IDB, c *challengedb.Challenge) error {
	f.record("UpdateChallenge")
	if f.UpdateChallengeFunc != nil {
		return f.UpdateChallengeFunc(ctx, db, c)
	}
	return nil
}

func (f *FakeChallengeRepository) GetChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*challengedb.Challenge, error) {
	f.record("GetChallenge")
	if f.GetChallengeFunc != nil {
		return f.GetChallengeFunc(ctx, db, id)
	}
	return nil, challengedb.ErrNotFound
}

func (f *FakeChallengeRepository) ListChallenges(ctx context.Context, db bun.IDB) ([]challengedb.Challenge, error) {
	f.record("ListChallenges")
	if f.ListChallengesFunc != nil {
		return f.ListChallengesFunc(ctx, db)
	}
	return nil, nil
}

func (f *FakeChallengeRepository) LockChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*challengedb.Challenge, error) {
	f.record("LockChallenge")
	if f.LockChallengeFunc != nil {
		return f.LockChallengeFunc(ctx, db, id)
	}
	return nil, challengedb.ErrNotFound
}

func (f *FakeChallengeRepository) GetPrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID) ([]uuid.UUID, error) {
	f.record("GetPrerequisites")
	if f.GetPrerequisitesFunc != nil {
		return f.GetPrerequisitesFunc(ctx, db, id)
	}
	return nil, nil
}

func (f *FakeChallengeRepository) GetPrerequisiteGraph(ctx context.Context, db bun.IDB) (challengedomain.Graph, error) {
	f.record("GetPrerequisiteGraph")
	if f.GetPrerequisiteGraphFunc != nil {
		return f.GetPrerequisiteGraphFunc(ctx, db)
	}
	return challengedomain.Graph{}, nil
}

func (f *FakeChallengeRepository) ReplacePrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID, requiredCount int, prerequisites []uuid.UUID) error {
	f.record("ReplacePrerequisites")
	if f.ReplacePrerequisitesFunc != nil {
		return f.ReplacePrerequisitesFunc(ctx, db, id, requiredCount, prerequisites)
	}
	return nil
}

func (f *FakeChallengeRepository) AcquireGraphLock(ctx context.Context, db bun.IDB) error {
	f.record("AcquireGraphLock")
	if f.AcquireGraphLockFunc != nil {
		return f.AcquireGraphLockFunc(ctx, db)
	}
	return nil
}

func (f *FakeChallengeRepository) ClaimExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error) {
	f.record("ClaimExclusive")
	if f.ClaimExclusiveFunc != nil {
		return f.ClaimExclusiveFunc(ctx, db, id)
	}
	return true, nil
}

func (f *FakeChallengeRepository) ReleaseExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error) {
	f.record("ReleaseExclusive")
	if f.ReleaseExclusiveFunc != nil {
		return f.ReleaseExclusiveFunc(ctx, db, id)
	}
	return true, nil
}

func (f *FakeChallengeRepository) CountSolvingCohorts(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error) {
	f.record("CountSolvingCohorts")
	if f.CountSolvingCohortsFunc != nil {
		return f.CountSolvingCohortsFunc(ctx, db, id)
	}
	return 0, nil
}

func (f *FakeChallengeRepository) ListDueReleases(ctx context.Context, db bun.IDB, now time.Time) ([]challengedb.Challenge, error) {
	f.record("ListDueReleases")
	if f.ListDueReleasesFunc != nil {
		return f.ListDueReleasesFunc(ctx, db, now)
	}
	return nil, nil
}

func (f *FakeChallengeRepository) MarkReleased(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error) {
	f.record("MarkReleased")
	if f.MarkReleasedFunc != nil {
		return f.MarkReleasedFunc(ctx, db, ids)
	}
	return len(ids), nil
}

// Ensure the fake actually satisfies the interface
var _ challengedb.Repository = (*FakeChallengeRepository)(nil)
