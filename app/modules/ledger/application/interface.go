package ledgerservice

import (
	"context"
	"time"

	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
)

type (
	SubmitOutcome       = results.OperationResult[ledgerdomain.SubmitResult, error]
	InvalidationOutcome = results.OperationResult[ledgerdomain.Invalidation, error]
	CohortOutcome       = results.OperationResult[ledgerdomain.Cohort, error]
	ParticipantOutcome  = results.OperationResult[ledgerdomain.Participant, error]
	StatsOutcome        = results.OperationResult[ledgerdomain.ChallengeStats, error]
)

// Service defines the completion ledger.
type Service interface {
	// Submit grades a flag and, when it is correct and every gate passes,
	// records the completion atomically.
	Submit(ctx context.Context, participantID, challengeID uuid.UUID, flag string) (SubmitOutcome, error)

	InvalidateCompletion(ctx context.Context, completionID, actorID uuid.UUID) (InvalidationOutcome, error)
	InvalidateSubmission(ctx context.Context, submissionID, actorID uuid.UUID) (InvalidationOutcome, error)

	RegisterCohort(ctx context.Context, name string, sortOrder int, actorID uuid.UUID) (CohortOutcome, error)
	RegisterParticipant(ctx context.Context, p ledgerdomain.Participant) (ParticipantOutcome, error)
	ListCohorts(ctx context.Context) ([]ledgerdomain.Cohort, error)

	DecayTable(ctx context.Context) (map[uuid.UUID]int, error)
	CohortStandings(ctx context.Context) ([]ledgerdomain.CohortStanding, error)
	ChallengeStats(ctx context.Context, challengeID uuid.UUID) (StatsOutcome, error)
	ParticipantStats(ctx context.Context, participantID uuid.UUID) (ledgerdomain.ParticipantStats, error)

	StandingsChart(ctx context.Context) ([]byte, error)
	ExportWorkbook(ctx context.Context) ([]byte, error)
}

// FirstSolveNotifier receives first-solve events after the award commits.
// Implementations must not block past ctx's deadline.
type FirstSolveNotifier interface {
	FirstSolve(ctx context.Context, ev ledgerdomain.FirstSolve) error
}

// HuntWindow reports whether non-staff submissions are open.
type HuntWindow interface {
	HuntOpen(now time.Time) bool
}

// Config tunes the ledger service.
type Config struct {
	// NotifyTimeout bounds the post-commit notification call.
	NotifyTimeout time.Duration
}

var _ Service = (*LedgerService)(nil)
