package ledgerdb

import (
	"context"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for ledger persistence. A nil db falls
// back to the repository's pool; the award and reversal paths always pass
// their transaction.
type Repository interface {
	// Cohorts and participants
	CreateCohort(ctx context.Context, db bun.IDB, c *Cohort) error
	GetCohort(ctx context.Context, db bun.IDB, id uuid.UUID) (*Cohort, error)
	ListCohorts(ctx context.Context, db bun.IDB) ([]Cohort, error)
	UpsertParticipant(ctx context.Context, db bun.IDB, p *Participant) error
	GetParticipant(ctx context.Context, db bun.IDB, id uuid.UUID) (*Participant, error)

	// Submissions
	InsertSubmission(ctx context.Context, db bun.IDB, s *Submission) error
	GetSubmission(ctx context.Context, db bun.IDB, id uuid.UUID) (*Submission, error)
	// LockSubmission reads the row with SELECT ... FOR UPDATE.
	LockSubmission(ctx context.Context, db bun.IDB, id uuid.UUID) (*Submission, error)
	// MarkSubmissionInvalidated zeroes points and flags the row; ErrNoRowsAffected
	// if it was already invalidated.
	MarkSubmissionInvalidated(ctx context.Context, db bun.IDB, id, actorID uuid.UUID, at time.Time) error
	ListSubmissions(ctx context.Context, db bun.IDB) ([]Submission, error)

	// Completions
	GetCompletion(ctx context.Context, db bun.IDB, participantID, challengeID uuid.UUID) (*Completion, error)
	GetCompletionByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Completion, error)
	GetCompletionBySubmission(ctx context.Context, db bun.IDB, submissionID uuid.UUID) (*Completion, error)
	CohortHasCompletion(ctx context.Context, db bun.IDB, challengeID, cohortID uuid.UUID) (bool, error)
	// CountFirstCohorts is n in the decay formula.
	CountFirstCohorts(ctx context.Context, db bun.IDB, challengeID uuid.UUID) (int, error)
	FirstCohortCounts(ctx context.Context, db bun.IDB) (map[uuid.UUID]int, error)
	CohortCompletedChallenges(ctx context.Context, db bun.IDB, cohortID uuid.UUID) ([]uuid.UUID, error)
	// InsertCompletion returns ErrDuplicateCompletion on a uniqueness violation.
	InsertCompletion(ctx context.Context, db bun.IDB, c *Completion) error
	DeleteCompletion(ctx context.Context, db bun.IDB, id uuid.UUID) error
	EarliestCohortCompletion(ctx context.Context, db bun.IDB, challengeID, cohortID uuid.UUID) (*Completion, error)
	PromoteFirstForCohort(ctx context.Context, db bun.IDB, id uuid.UUID) error
	ListCompletions(ctx context.Context, db bun.IDB) ([]Completion, error)

	// Audit
	InsertAuditEntry(ctx context.Context, db bun.IDB, e *AuditEntry) error
	ListAuditEntries(ctx context.Context, db bun.IDB) ([]AuditEntry, error)

	// Scoreboard
	CohortStandings(ctx context.Context, db bun.IDB) ([]ledgerdomain.CohortStanding, error)
	ChallengeSolves(ctx context.Context, db bun.IDB, challengeID uuid.UUID) ([]ledgerdomain.CohortSolve, error)
	SubmissionCounts(ctx context.Context, db bun.IDB, challengeID uuid.UUID) (attempts int, correct int, err error)
	ParticipantStats(ctx context.Context, db bun.IDB, participantID uuid.UUID) (ledgerdomain.ParticipantStats, error)
}
