package ledgerhandlers

import (
	"context"

	ledgerservice "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/application"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/google/uuid"
)

// FakeLedgerService is a programmable stub for ledgerservice.Service.
type FakeLedgerService struct {
	SubmitFunc               func(ctx context.Context, participantID, challengeID uuid.UUID, flag string) (ledgerservice.SubmitOutcome, error)
	InvalidateCompletionFunc func(ctx context.Context, completionID, actorID uuid.UUID) (ledgerservice.InvalidationOutcome, error)
	InvalidateSubmissionFunc func(ctx context.Context, submissionID, actorID uuid.UUID) (ledgerservice.InvalidationOutcome, error)
	RegisterCohortFunc       func(ctx context.Context, name string, sortOrder int, actorID uuid.UUID) (ledgerservice.CohortOutcome, error)
	RegisterParticipantFunc  func(ctx context.Context, p ledgerdomain.Participant) (ledgerservice.ParticipantOutcome, error)
	CohortStandingsFunc      func(ctx context.Context) ([]ledgerdomain.CohortStanding, error)
	ExportWorkbookFunc       func(ctx context.Context) ([]byte, error)
}

func (f *FakeLedgerService) Submit(ctx context.Context, participantID, challengeID uuid.UUID, flag string) (ledgerservice.SubmitOutcome, error) {
	if f.SubmitFunc != nil {
		return f.SubmitFunc(ctx, participantID, challengeID, flag)
	}
	return ledgerservice.SubmitOutcome{}, nil
}

func (f *FakeLedgerService) InvalidateCompletion(ctx context.Context, completionID, actorID uuid.UUID) (ledgerservice.InvalidationOutcome, error) {
	if f.InvalidateCompletionFunc != nil {
		return f.InvalidateCompletionFunc(ctx, completionID, actorID)
	}
	return ledgerservice.InvalidationOutcome{}, nil
}

func (f *FakeLedgerService) InvalidateSubmission(ctx context.Context, submissionID, actorID uuid.UUID) (ledgerservice.InvalidationOutcome, error) {
	if f.InvalidateSubmissionFunc != nil {
		return f.InvalidateSubmissionFunc(ctx, submissionID, actorID)
	}
	return ledgerservice.InvalidationOutcome{}, nil
}

func (f *FakeLedgerService) RegisterCohort(ctx context.Context, name string, sortOrder int, actorID uuid.UUID) (ledgerservice.CohortOutcome, error) {
	if f.RegisterCohortFunc != nil {
		return f.RegisterCohortFunc(ctx, name, sortOrder, actorID)
	}
	return ledgerservice.CohortOutcome{}, nil
}

func (f *FakeLedgerService) RegisterParticipant(ctx context.Context, p ledgerdomain.Participant) (ledgerservice.ParticipantOutcome, error) {
	if f.RegisterParticipantFunc != nil {
		return f.RegisterParticipantFunc(ctx, p)
	}
	return ledgerservice.ParticipantOutcome{}, nil
}

func (f *FakeLedgerService) ListCohorts(ctx context.Context) ([]ledgerdomain.Cohort, error) {
	return nil, nil
}

func (f *FakeLedgerService) DecayTable(ctx context.Context) (map[uuid.UUID]int, error) {
	return map[uuid.UUID]int{}, nil
}

func (f *FakeLedgerService) CohortStandings(ctx context.Context) ([]ledgerdomain.CohortStanding, error) {
	if f.CohortStandingsFunc != nil {
		return f.CohortStandingsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeLedgerService) ChallengeStats(ctx context.Context, challengeID uuid.UUID) (ledgerservice.StatsOutcome, error) {
	return ledgerservice.StatsOutcome{}, nil
}

func (f *FakeLedgerService) ParticipantStats(ctx context.Context, participantID uuid.UUID) (ledgerdomain.ParticipantStats, error) {
	return ledgerdomain.ParticipantStats{ParticipantID: participantID}, nil
}

func (f *FakeLedgerService) StandingsChart(ctx context.Context) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (f *FakeLedgerService) ExportWorkbook(ctx context.Context) ([]byte, error) {
	if f.ExportWorkbookFunc != nil {
		return f.ExportWorkbookFunc(ctx)
	}
	return []byte("PK"), nil
}

var _ ledgerservice.Service = (*FakeLedgerService)(nil)
