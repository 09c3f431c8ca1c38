package ledgerservice

import (
	"context"
	"errors"
	"fmt"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
)

// DecayTable maps every released decreasing challenge to the points its
// next solving cohort would earn.
func (s *LedgerService) DecayTable(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := s.challengeRepo.ListChallenges(ctx, nil)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.FirstCohortCounts(ctx, nil)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	released := make([]challengedomain.Challenge, 0, len(rows))
	for i := range rows {
		c := rows[i].ToDomain(nil)
		if c.IsReleased(now) {
			released = append(released, c)
		}
	}
	return challengedomain.DecayTable(released, counts), nil
}

// CohortStandings returns ranked cohort totals summed from completions.
func (s *LedgerService) CohortStandings(ctx context.Context) ([]ledgerdomain.CohortStanding, error) {
	rows, err := s.repo.CohortStandings(ctx, nil)
	if err != nil {
		return nil, err
	}
	return ledgerdomain.RankStandings(rows), nil
}

func (s *LedgerService) ChallengeStats(ctx context.Context, challengeID uuid.UUID) (StatsOutcome, error) {
	return withTelemetry(s, ctx, "ChallengeStats", challengeID.String(), func(ctx context.Context) (StatsOutcome, error) {
		row, err := s.challengeRepo.GetChallenge(ctx, nil, challengeID)
		if err != nil {
			if errors.Is(err, challengedb.ErrNotFound) {
				return results.FailureResult[ledgerdomain.ChallengeStats, error](
					fmt.Errorf("%w: challenge %s", ErrNotFound, challengeID)), nil
			}
			return StatsOutcome{}, err
		}

		attempts, correct, err := s.repo.SubmissionCounts(ctx, nil, challengeID)
		if err != nil {
			return StatsOutcome{}, err
		}
		solves, err := s.repo.ChallengeSolves(ctx, nil, challengeID)
		if err != nil {
			return StatsOutcome{}, err
		}

		solvedBy := 0
		if row.Type == challengedomain.TypeDecreasing {
			if solvedBy, err = s.repo.CountFirstCohorts(ctx, nil, challengeID); err != nil {
				return StatsOutcome{}, err
			}
		}

		return results.SuccessResult[ledgerdomain.ChallengeStats, error](ledgerdomain.ChallengeStats{
			ChallengeID:   challengeID,
			Attempts:      attempts,
			CorrectCount:  correct,
			CurrentPoints: challengedomain.CurrentPoints(row.ToDomain(nil), solvedBy),
			Cohorts:       solves,
		}), nil
	})
}

func (s *LedgerService) ParticipantStats(ctx context.Context, participantID uuid.UUID) (ledgerdomain.ParticipantStats, error) {
	return s.repo.ParticipantStats(ctx, nil, participantID)
}
