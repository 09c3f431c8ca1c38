package ledgerdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("ledgerdb.%s: %w", op, err)
}

// --- cohorts & participants ---

func (r *Impl) CreateCohort(ctx context.Context, db bun.IDB, c *Cohort) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(c).Returning("*").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", ErrDuplicateCohort, c.Name)
		}
		return fmt.Errorf("ledgerdb.CreateCohort: %w", err)
	}
	return nil
}

func (r *Impl) GetCohort(ctx context.Context, db bun.IDB, id uuid.UUID) (*Cohort, error) {
	db = r.resolveDB(db)
	c := new(Cohort)
	if err := db.NewSelect().Model(c).Where("co.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "GetCohort")
	}
	return c, nil
}

func (r *Impl) ListCohorts(ctx context.Context, db bun.IDB) ([]Cohort, error) {
	db = r.resolveDB(db)
	var out []Cohort
	if err := db.NewSelect().Model(&out).Order("co.sort_order ASC", "co.name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ledgerdb.ListCohorts: %w", err)
	}
	return out, nil
}

// UpsertParticipant inserts or refreshes a participant pushed by the identity provider.
func (r *Impl) UpsertParticipant(ctx context.Context, db bun.IDB, p *Participant) error {
	db = r.resolveDB(db)
	p.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(p).
		On("CONFLICT (id) DO UPDATE").
		Set("display_name = EXCLUDED.display_name").
		Set("cohort_id = EXCLUDED.cohort_id").
		Set("is_staff = EXCLUDED.is_staff").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.UpsertParticipant: %w", err)
	}
	return nil
}

func (r *Impl) GetParticipant(ctx context.Context, db bun.IDB, id uuid.UUID) (*Participant, error) {
	db = r.resolveDB(db)
	p := new(Participant)
	err := db.NewSelect().Model(p).Relation("Cohort").Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, notFound(err, "GetParticipant")
	}
	return p, nil
}

// --- submissions ---

func (r *Impl) InsertSubmission(ctx context.Context, db bun.IDB, s *Submission) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(s).Returning("*").Exec(ctx); err != nil {
		return fmt.Errorf("ledgerdb.InsertSubmission: %w", err)
	}
	return nil
}

func (r *Impl) GetSubmission(ctx context.Context, db bun.IDB, id uuid.UUID) (*Submission, error) {
	db = r.resolveDB(db)
	s := new(Submission)
	if err := db.NewSelect().Model(s).Where("s.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "GetSubmission")
	}
	return s, nil
}

func (r *Impl) LockSubmission(ctx context.Context, db bun.IDB, id uuid.UUID) (*Submission, error) {
	db = r.resolveDB(db)
	s := new(Submission)
	if err := db.NewSelect().Model(s).Where("s.id = ?", id).For("UPDATE").Scan(ctx); err != nil {
		return nil, notFound(err, "LockSubmission")
	}
	return s, nil
}

func (r *Impl) MarkSubmissionInvalidated(ctx context.Context, db bun.IDB, id, actorID uuid.UUID, at time.Time) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Submission)(nil)).
		Set("invalidated = true").
		Set("points_awarded = 0").
		Set("invalidated_by = ?", actorID).
		Set("invalidated_at = ?", at).
		Where("id = ?", id).
		Where("invalidated = false").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.MarkSubmissionInvalidated: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) ListSubmissions(ctx context.Context, db bun.IDB) ([]Submission, error) {
	db = r.resolveDB(db)
	var out []Submission
	if err := db.NewSelect().Model(&out).Order("s.created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ledgerdb.ListSubmissions: %w", err)
	}
	return out, nil
}

// --- completions ---

func (r *Impl) GetCompletion(ctx context.Context, db bun.IDB, participantID, challengeID uuid.UUID) (*Completion, error) {
	db = r.resolveDB(db)
	c := new(Completion)
	err := db.NewSelect().Model(c).
		Where("cm.participant_id = ?", participantID).
		Where("cm.challenge_id = ?", challengeID).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "GetCompletion")
	}
	return c, nil
}

func (r *Impl) GetCompletionByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Completion, error) {
	db = r.resolveDB(db)
	c := new(Completion)
	if err := db.NewSelect().Model(c).Where("cm.id = ?", id).Scan(ctx); err != nil {
		return nil, notFound(err, "GetCompletionByID")
	}
	return c, nil
}

func (r *Impl) GetCompletionBySubmission(ctx context.Context, db bun.IDB, submissionID uuid.UUID) (*Completion, error) {
	db = r.resolveDB(db)
	c := new(Completion)
	if err := db.NewSelect().Model(c).Where("cm.submission_id = ?", submissionID).Scan(ctx); err != nil {
		return nil, notFound(err, "GetCompletionBySubmission")
	}
	return c, nil
}

func (r *Impl) CohortHasCompletion(ctx context.Context, db bun.IDB, challengeID, cohortID uuid.UUID) (bool, error) {
	db = r.resolveDB(db)
	exists, err := db.NewSelect().Model((*Completion)(nil)).
		Where("challenge_id = ?", challengeID).
		Where("cohort_id = ?", cohortID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("ledgerdb.CohortHasCompletion: %w", err)
	}
	return exists, nil
}

func (r *Impl) CountFirstCohorts(ctx context.Context, db bun.IDB, challengeID uuid.UUID) (int, error) {
	db = r.resolveDB(db)
	var n int
	err := db.NewSelect().Model((*Completion)(nil)).
		ColumnExpr("COUNT(DISTINCT cohort_id)").
		Where("challenge_id = ?", challengeID).
		Where("first_for_cohort").
		Scan(ctx, &n)
	if err != nil {
		return 0, fmt.Errorf("ledgerdb.CountFirstCohorts: %w", err)
	}
	return n, nil
}

func (r *Impl) FirstCohortCounts(ctx context.Context, db bun.IDB) (map[uuid.UUID]int, error) {
	db = r.resolveDB(db)
	var rows []struct {
		ChallengeID uuid.UUID `bun:"challenge_id"`
		N           int       `bun:"n"`
	}
	err := db.NewSelect().Model((*Completion)(nil)).
		Column("challenge_id").
		ColumnExpr("COUNT(DISTINCT cohort_id) AS n").
		Where("first_for_cohort").
		Group("challenge_id").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.FirstCohortCounts: %w", err)
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		out[row.ChallengeID] = row.N
	}
	return out, nil
}

func (r *Impl) CohortCompletedChallenges(ctx context.Context, db bun.IDB, cohortID uuid.UUID) ([]uuid.UUID, error) {
	db = r.resolveDB(db)
	var ids []uuid.UUID
	err := db.NewSelect().Model((*Completion)(nil)).
		ColumnExpr("DISTINCT challenge_id").
		Where("cohort_id = ?", cohortID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.CohortCompletedChallenges: %w", err)
	}
	return ids, nil
}

func (r *Impl) InsertCompletion(ctx context.Context, db bun.IDB, c *Completion) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(c).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: participant %s challenge %s", ErrDuplicateCompletion, c.ParticipantID, c.ChallengeID)
		}
		return fmt.Errorf("ledgerdb.InsertCompletion: %w", err)
	}
	return nil
}

func (r *Impl) DeleteCompletion(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().Model((*Completion)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.DeleteCompletion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) EarliestCohortCompletion(ctx context.Context, db bun.IDB, challengeID, cohortID uuid.UUID) (*Completion, error) {
	db = r.resolveDB(db)
	c := new(Completion)
	err := db.NewSelect().Model(c).
		Where("cm.challenge_id = ?", challengeID).
		Where("cm.cohort_id = ?", cohortID).
		Order("cm.created_at ASC", "cm.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "EarliestCohortCompletion")
	}
	return c, nil
}

func (r *Impl) PromoteFirstForCohort(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().Model((*Completion)(nil)).
		Set("first_for_cohort = true").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("ledgerdb.PromoteFirstForCohort: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *Impl) ListCompletions(ctx context.Context, db bun.IDB) ([]Completion, error) {
	db = r.resolveDB(db)
	var out []Completion
	if err := db.NewSelect().Model(&out).Order("cm.created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ledgerdb.ListCompletions: %w", err)
	}
	return out, nil
}

// --- audit ---

func (r *Impl) InsertAuditEntry(ctx context.Context, db bun.IDB, e *AuditEntry) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(e).Exec(ctx); err != nil {
		return fmt.Errorf("ledgerdb.InsertAuditEntry: %w", err)
	}
	return nil
}

func (r *Impl) ListAuditEntries(ctx context.Context, db bun.IDB) ([]AuditEntry, error) {
	db = r.resolveDB(db)
	var out []AuditEntry
	if err := db.NewSelect().Model(&out).Order("ae.created_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("ledgerdb.ListAuditEntries: %w", err)
	}
	return out, nil
}

// --- scoreboard ---

// CohortStandings derives every cohort's total from completion rows,
// including cohorts with no completions.
func (r *Impl) CohortStandings(ctx context.Context, db bun.IDB) ([]ledgerdomain.CohortStanding, error) {
	db = r.resolveDB(db)
	var rows []struct {
		CohortID    uuid.UUID `bun:"cohort_id"`
		CohortName  string    `bun:"cohort_name"`
		Points      int       `bun:"points"`
		Completions int       `bun:"completions"`
		FirstSolves int       `bun:"first_solves"`
	}
	err := db.NewSelect().
		TableExpr("cohorts AS co").
		ColumnExpr("co.id AS cohort_id").
		ColumnExpr("co.name AS cohort_name").
		ColumnExpr("COALESCE(SUM(cm.points_earned), 0) AS points").
		ColumnExpr("COUNT(cm.id) AS completions").
		ColumnExpr("COUNT(cm.id) FILTER (WHERE cm.first_for_cohort) AS first_solves").
		Join("LEFT JOIN completions AS cm ON cm.cohort_id = co.id").
		GroupExpr("co.id, co.name").
		OrderExpr("co.sort_order ASC, co.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.CohortStandings: %w", err)
	}
	out := make([]ledgerdomain.CohortStanding, len(rows))
	for i, row := range rows {
		out[i] = ledgerdomain.CohortStanding{
			CohortID:    row.CohortID,
			CohortName:  row.CohortName,
			Points:      row.Points,
			Completions: row.Completions,
			FirstSolves: row.FirstSolves,
		}
	}
	return out, nil
}

func (r *Impl) ChallengeSolves(ctx context.Context, db bun.IDB, challengeID uuid.UUID) ([]ledgerdomain.CohortSolve, error) {
	db = r.resolveDB(db)
	var out []ledgerdomain.CohortSolve
	err := db.NewSelect().
		TableExpr("completions AS cm").
		ColumnExpr("cm.cohort_id AS cohort_id").
		ColumnExpr("co.name AS cohort_name").
		ColumnExpr("COUNT(*) AS solvers").
		ColumnExpr("SUM(cm.points_earned) AS points").
		ColumnExpr("MIN(cm.created_at) AS first_solve_at").
		Join("JOIN cohorts AS co ON co.id = cm.cohort_id").
		Where("cm.challenge_id = ?", challengeID).
		GroupExpr("cm.cohort_id, co.name").
		OrderExpr("first_solve_at ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, fmt.Errorf("ledgerdb.ChallengeSolves: %w", err)
	}
	return out, nil
}

func (r *Impl) SubmissionCounts(ctx context.Context, db bun.IDB, challengeID uuid.UUID) (int, int, error) {
	db = r.resolveDB(db)
	var row struct {
		Attempts int `bun:"attempts"`
		Correct  int `bun:"correct"`
	}
	err := db.NewSelect().Model((*Submission)(nil)).
		ColumnExpr("COUNT(*) AS attempts").
		ColumnExpr("COUNT(*) FILTER (WHERE correct) AS correct").
		Where("challenge_id = ?", challengeID).
		Scan(ctx, &row)
	if err != nil {
		return 0, 0, fmt.Errorf("ledgerdb.SubmissionCounts: %w", err)
	}
	return row.Attempts, row.Correct, nil
}

func (r *Impl) ParticipantStats(ctx context.Context, db bun.IDB, participantID uuid.UUID) (ledgerdomain.ParticipantStats, error) {
	db = r.resolveDB(db)
	stats := ledgerdomain.ParticipantStats{ParticipantID: participantID}

	var subs struct {
		Total   int `bun:"total"`
		Correct int `bun:"correct"`
	}
	err := db.NewSelect().Model((*Submission)(nil)).
		ColumnExpr("COUNT(*) AS total").
		ColumnExpr("COUNT(*) FILTER (WHERE correct) AS correct").
		Where("participant_id = ?", participantID).
		Scan(ctx, &subs)
	if err != nil {
		return stats, fmt.Errorf("ledgerdb.ParticipantStats: %w", err)
	}

	var comps struct {
		Count  int `bun:"count"`
		Points int `bun:"points"`
	}
	err = db.NewSelect().Model((*Completion)(nil)).
		ColumnExpr("COUNT(*) AS count").
		ColumnExpr("COALESCE(SUM(points_earned), 0) AS points").
		Where("participant_id = ?", participantID).
		Scan(ctx, &comps)
	if err != nil {
		return stats, fmt.Errorf("ledgerdb.ParticipantStats: %w", err)
	}

	stats.Submissions = subs.Total
	stats.Correct = subs.Correct
	stats.Completions = comps.Count
	stats.PointsEarned = comps.Points
	return stats, nil
}
