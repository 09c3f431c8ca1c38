package challengedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const graphLockKey = "challenge_prerequisites"

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new challenge repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) CreateChallenge(ctx context.Context, db bun.IDB, c *Challenge) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(c).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("challengedb.CreateChallenge: %w", err)
	}
	return nil
}

// UpdateChallenge writes the editable columns. locked is owned by the
// exclusivity CAS and is never written here.
func (r *Impl) UpdateChallenge(ctx context.Context, db bun.IDB, c *Challenge) error {
	db = r.resolveDB(db)
	c.UpdatedAt = time.Now().UTC()
	res, err := db.NewUpdate().
		Model(c).
		Column("name", "description", "category", "flag", "points", "type", "decay_percent",
			"required_count", "released", "timed_release", "release_at", "sort_order", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("challengedb.UpdateChallenge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) GetChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*Challenge, error) {
	db = r.resolveDB(db)
	c := new(Challenge)
	err := db.NewSelect().Model(c).Where("c.id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("challengedb.GetChallenge: %w", err)
	}
	return c, nil
}

func (r *Impl) ListChallenges(ctx context.Context, db bun.IDB) ([]Challenge, error) {
	db = r.resolveDB(db)
	var out []Challenge
	err := db.NewSelect().
		Model(&out).
		Order("c.sort_order ASC", "c.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("challengedb.ListChallenges: %w", err)
	}
	return out, nil
}

func (r *Impl) LockChallenge(ctx context.Context, db bun.IDB, id uuid.UUID) (*Challenge, error) {
	db = r.resolveDB(db)
	c := new(Challenge)
	err := db.NewSelect().Model(c).Where("c.id = ?", id).For("UPDATE").Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("challengedb.LockChallenge: %w", err)
	}
	return c, nil
}

func (r *Impl) GetPrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().
		Model((*Prerequisite)(nil)).
		Column("prerequisite_id").
		Where("challenge_id = ?", id).
		Order("prerequisite_id").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("challengedb.GetPrerequisites: %w", err)
	}
	return ids, nil
}

func (r *Impl) GetPrerequisiteGraph(ctx context.Context, db bun.IDB) (challengedomain.Graph, error) {
	db = r.resolveDB(db)

	var ids []uuid.UUID
	if err := db.NewSelect().Model((*Challenge)(nil)).Column("id").Scan(ctx, &ids); err != nil {
		return nil, fmt.Errorf("challengedb.GetPrerequisiteGraph: %w", err)
	}
	var edges []Prerequisite
	if err := db.NewSelect().Model(&edges).Scan(ctx); err != nil {
		return nil, fmt.Errorf("challengedb.GetPrerequisiteGraph: %w", err)
	}

	g := make(challengedomain.Graph, len(ids))
	for _, id := range ids {
		g[id] = nil
	}
	for _, e := range edges {
		g[e.ChallengeID] = append(g[e.ChallengeID], e.PrerequisiteID)
	}
	return g, nil
}

func (r *Impl) ReplacePrerequisites(ctx context.Context, db bun.IDB, id uuid.UUID, requiredCount int, prerequisites []uuid.UUID) error {
	db = r.resolveDB(db)

	_, err := db.NewDelete().
		Model((*Prerequisite)(nil)).
		Where("challenge_id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("challengedb.ReplacePrerequisites: %w", err)
	}

	if len(prerequisites) > 0 {
		edges := make([]Prerequisite, 0, len(prerequisites))
		for _, p := range prerequisites {
			edges = append(edges, Prerequisite{ChallengeID: id, PrerequisiteID: p})
		}
		if _, err := db.NewInsert().Model(&edges).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
			return fmt.Errorf("challengedb.ReplacePrerequisites: %w", err)
		}
	}

	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("required_count = ?", requiredCount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("challengedb.ReplacePrerequisites: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) AcquireGraphLock(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	if _, err := db.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", graphLockKey).Exec(ctx); err != nil {
		return fmt.Errorf("challengedb.AcquireGraphLock: %w", err)
	}
	return nil
}

// CountSolvingCohorts counts the distinct cohorts holding a completion of id.
// The completions table belongs to the ledger; callers hold the challenge
// row lock so the count cannot move underneath them.
func (r *Impl) CountSolvingCohorts(ctx context.Context, db bun.IDB, id uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	var n int
	err := db.NewSelect().
		TableExpr("completions").
		ColumnExpr("count(DISTINCT cohort_id)").
		Where("challenge_id = ?", id).
		Scan(ctx, &n)
	if err != nil {
		return 0, fmt.Errorf("challengedb.CountSolvingCohorts: %w", err)
	}
	return n, nil
}

func (r *Impl) ClaimExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("locked = TRUE").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("locked = FALSE").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("challengedb.ClaimExclusive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("challengedb.ClaimExclusive: %w", err)
	}
	return n == 1, nil
}

func (r *Impl) ReleaseExclusive(ctx context.Context, db bun.IDB, id uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("locked = FALSE").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("locked = TRUE").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("challengedb.ReleaseExclusive: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("challengedb.ReleaseExclusive: %w", err)
	}
	return n == 1, nil
}

func (r *Impl) ListDueReleases(ctx context.Context, db bun.IDB, now time.Time) ([]Challenge, error) {
	db = r.resolveDB(db)
	var out []Challenge
	err := db.NewSelect().
		Model(&out).
		Where("c.timed_release = TRUE").
		Where("c.released = FALSE").
		Where("c.release_at <= ?", now).
		Order("c.release_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("challengedb.ListDueReleases: %w", err)
	}
	return out, nil
}

func (r *Impl) MarkReleased(ctx context.Context, db bun.IDB, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Challenge)(nil)).
		Set("released = TRUE").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id IN (?)", bun.In(ids)).
		Where("released = FALSE").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("challengedb.MarkReleased: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
