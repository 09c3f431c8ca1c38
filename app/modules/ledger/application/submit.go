package ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// award is what recordCompletion hands back to Submit for post-commit work.
type award struct {
	result     ledgerdomain.SubmitResult
	firstSolve *ledgerdomain.FirstSolve
	decayMoved bool
}

type awardOutcome = results.OperationResult[award, error]

// Submit grades flag for the participant. Wrong flags are logged and
// reported as failure. Correct flags go through recordCompletion in one
// transaction; the first-solve notification and decay table are produced
// only after it commits.
func (s *LedgerService) Submit(ctx context.Context, participantID, challengeID uuid.UUID, flag string) (SubmitOutcome, error) {
	outcome, err := withTelemetry(s, ctx, "Submit", challengeID.String(), func(ctx context.Context) (SubmitOutcome, error) {
		if participantID == uuid.Nil || challengeID == uuid.Nil {
			return results.FailureResult[ledgerdomain.SubmitResult, error](
				fmt.Errorf("%w: participant and challenge ids are required", ErrValidation)), nil
		}

		participant, err := s.repo.GetParticipant(ctx, nil, participantID)
		if err != nil {
			if errors.Is(err, ledgerdb.ErrNotFound) {
				return results.FailureResult[ledgerdomain.SubmitResult, error](
					fmt.Errorf("%w: participant %s", ErrNotFound, participantID)), nil
			}
			return SubmitOutcome{}, err
		}

		row, err := s.challengeRepo.GetChallenge(ctx, nil, challengeID)
		if err != nil {
			if errors.Is(err, challengedb.ErrNotFound) {
				return results.FailureResult[ledgerdomain.SubmitResult, error](
					fmt.Errorf("%w: challenge %s", ErrNotFound, challengeID)), nil
			}
			return SubmitOutcome{}, err
		}
		challenge := row.ToDomain(nil)

		now := s.clock.Now()
		if !participant.IsStaff {
			if s.hunt != nil && !s.hunt.HuntOpen(now) {
				return results.SuccessResult[ledgerdomain.SubmitResult, error](
					ledgerdomain.Rejected(uuid.Nil, ledgerdomain.ReasonHuntInactive)), nil
			}
			if !challenge.IsReleased(now) {
				return results.SuccessResult[ledgerdomain.SubmitResult, error](
					ledgerdomain.Rejected(uuid.Nil, ledgerdomain.ReasonNotReleased)), nil
			}
		}

		if !challengedomain.IsCorrect(challenge, flag) {
			sub, err := s.logSubmission(ctx, nil, participant, challengeID, flag, false, 0)
			if err != nil {
				return SubmitOutcome{}, err
			}
			return results.SuccessResult[ledgerdomain.SubmitResult, error](ledgerdomain.Wrong(sub.ID)), nil
		}

		out, err := runInTx(s, ctx, "Submit", func(ctx context.Context, tx bun.IDB) (awardOutcome, error) {
			return s.recordCompletion(ctx, tx, participant, challengeID, flag)
		})
		switch {
		case errors.Is(err, errClaimLost):
			return s.rejectAfterRollback(ctx, participant, challengeID, flag, ledgerdomain.ReasonLocked)
		case errors.Is(err, ledgerdb.ErrDuplicateCompletion):
			return s.alreadyCompleted(ctx, participant, challengeID, flag)
		case err != nil:
			return SubmitOutcome{}, err
		case out.IsFailure():
			return results.FailureResult[ledgerdomain.SubmitResult, error](*out.Failure), nil
		}

		a := *out.Success
		if a.firstSolve != nil {
			s.notify(ctx, *a.firstSolve)
		}
		if a.decayMoved {
			table, err := s.DecayTable(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "Failed to build decay table after award", attr.Error(err))
			} else {
				a.result.DecayTable = table
			}
		}
		if a.result.PointsAwarded > 0 && a.result.Accepted {
			cohortName := participant.CohortID.String()
			if participant.Cohort != nil {
				cohortName = participant.Cohort.Name
			}
			s.metrics.RecordPointsAwarded(ctx, cohortName, a.result.PointsAwarded)
		}
		return results.SuccessResult[ledgerdomain.SubmitResult, error](a.result), nil
	})

	if err == nil && outcome.IsSuccess() {
		s.metrics.RecordSubmission(ctx, string(outcome.Success.Result))
	} else if err != nil {
		s.metrics.RecordSubmission(ctx, string(ledgerdomain.ResultError))
	}
	return outcome, err
}

// recordCompletion is the award decision. It holds the challenge row lock
// from the first read to commit, so every completion and reversal of the
// same challenge is serialized and decay order equals commit order.
func (s *LedgerService) recordCompletion(ctx context.Context, tx bun.IDB, p *ledgerdb.Participant, challengeID uuid.UUID, flag string) (awardOutcome, error) {
	row, err := s.challengeRepo.LockChallenge(ctx, tx, challengeID)
	if err != nil {
		if errors.Is(err, challengedb.ErrNotFound) {
			return results.FailureResult[award, error](fmt.Errorf("%w: challenge %s", ErrNotFound, challengeID)), nil
		}
		return awardOutcome{}, err
	}
	challenge := row.ToDomain(nil)

	// The flag may have been edited between the unlocked read and the lock.
	if !challengedomain.IsCorrect(challenge, flag) {
		sub, err := s.logSubmission(ctx, tx, p, challengeID, flag, false, 0)
		if err != nil {
			return awardOutcome{}, err
		}
		return results.SuccessResult[award, error](award{result: ledgerdomain.Wrong(sub.ID)}), nil
	}

	existing, err := s.repo.GetCompletion(ctx, tx, p.ID, challengeID)
	switch {
	case err == nil:
		sub, err := s.logSubmission(ctx, tx, p, challengeID, flag, true, 0)
		if err != nil {
			return awardOutcome{}, err
		}
		return results.SuccessResult[award, error](award{
			result: ledgerdomain.AlreadyCompleted(sub.ID, existing.PointsEarned, existing.FirstForCohort),
		}), nil
	case !errors.Is(err, ledgerdb.ErrNotFound):
		return awardOutcome{}, err
	}

	if challenge.Locked {
		return s.rejectInTx(ctx, tx, p, challengeID, flag, ledgerdomain.ReasonLocked)
	}

	if challenge.Type == challengedomain.TypeUnlocking {
		available, err := s.availableTo(ctx, tx, &challenge, p.CohortID)
		if err != nil {
			return awardOutcome{}, err
		}
		if !available {
			return s.rejectInTx(ctx, tx, p, challengeID, flag, ledgerdomain.ReasonUnavailable)
		}
	}

	cohortDone, err := s.repo.CohortHasCompletion(ctx, tx, challengeID, p.CohortID)
	if err != nil {
		return awardOutcome{}, err
	}
	firstForCohort := !cohortDone

	solvedBy := 0
	if challenge.Type == challengedomain.TypeDecreasing {
		if solvedBy, err = s.repo.CountFirstCohorts(ctx, tx, challengeID); err != nil {
			return awardOutcome{}, err
		}
	}
	base := challengedomain.CurrentPoints(challenge, solvedBy)

	awarded := 0
	if firstForCohort {
		awarded = base
	}

	sub, err := s.logSubmission(ctx, tx, p, challengeID, flag, true, awarded)
	if err != nil {
		return awardOutcome{}, err
	}

	now := s.clock.Now()
	completion := &ledgerdb.Completion{
		ParticipantID:  p.ID,
		ChallengeID:    challengeID,
		CohortID:       p.CohortID,
		SubmissionID:   sub.ID,
		PointsEarned:   awarded,
		FirstForCohort: firstForCohort,
		CreatedAt:      now,
	}
	if err := s.repo.InsertCompletion(ctx, tx, completion); err != nil {
		return awardOutcome{}, err
	}

	if challenge.Type == challengedomain.TypeExclusive {
		won, err := s.challengeRepo.ClaimExclusive(ctx, tx, challengeID)
		if err != nil {
			return awardOutcome{}, err
		}
		if !won {
			return awardOutcome{}, errClaimLost
		}
	}

	s.logger.InfoContext(ctx, "Completion recorded",
		attr.UUID("participant_id", p.ID),
		attr.UUID("challenge_id", challengeID),
		attr.UUID("cohort_id", p.CohortID),
		attr.Int("points", awarded),
		attr.Bool("first_for_cohort", firstForCohort),
	)

	a := award{result: ledgerdomain.SubmitResult{
		Result:         ledgerdomain.ResultSuccess,
		SubmissionID:   sub.ID,
		PointsAwarded:  awarded,
		Accepted:       true,
		FirstForCohort: firstForCohort,
	}}
	if firstForCohort {
		a.firstSolve = &ledgerdomain.FirstSolve{
			ChallengeID:   challengeID,
			ChallengeName: challenge.Name,
			Category:      challenge.Category,
			CohortID:      p.CohortID,
			CohortName:    cohortName(p),
			Points:        awarded,
			SolverName:    p.DisplayName,
			SolvedAt:      now,
		}
		a.decayMoved = challenge.Type == challengedomain.TypeDecreasing
	}
	return results.SuccessResult[award, error](a), nil
}

// availableTo evaluates the unlock gate over the cohort's completed set.
func (s *LedgerService) availableTo(ctx context.Context, tx bun.IDB, c *challengedomain.Challenge, cohortID uuid.UUID) (bool, error) {
	prereqs, err := s.challengeRepo.GetPrerequisites(ctx, tx, c.ID)
	if err != nil {
		return false, err
	}
	c.Prerequisites = prereqs
	done, err := s.repo.CohortCompletedChallenges(ctx, tx, cohortID)
	if err != nil {
		return false, err
	}
	return challengedomain.IsAvailable(*c, challengedomain.NewChallengeSet(done...)), nil
}

func (s *LedgerService) rejectInTx(ctx context.Context, tx bun.IDB, p *ledgerdb.Participant, challengeID uuid.UUID, flag string, reason ledgerdomain.Reason) (awardOutcome, error) {
	sub, err := s.logSubmission(ctx, tx, p, challengeID, flag, true, 0)
	if err != nil {
		return awardOutcome{}, err
	}
	return results.SuccessResult[award, error](award{result: ledgerdomain.Rejected(sub.ID, reason)}), nil
}

// rejectAfterRollback logs the attempt once the aborted award is gone.
func (s *LedgerService) rejectAfterRollback(ctx context.Context, p *ledgerdb.Participant, challengeID uuid.UUID, flag string, reason ledgerdomain.Reason) (SubmitOutcome, error) {
	s.logger.WarnContext(ctx, "Award rolled back",
		attr.UUID("participant_id", p.ID),
		attr.UUID("challenge_id", challengeID),
		attr.String("reason", string(reason)),
	)
	sub, err := s.logSubmission(ctx, nil, p, challengeID, flag, true, 0)
	if err != nil {
		return SubmitOutcome{}, err
	}
	return results.SuccessResult[ledgerdomain.SubmitResult, error](ledgerdomain.Rejected(sub.ID, reason)), nil
}

// alreadyCompleted handles a duplicate insert that slipped past the
// idempotency read; the unique constraint is the backstop.
func (s *LedgerService) alreadyCompleted(ctx context.Context, p *ledgerdb.Participant, challengeID uuid.UUID, flag string) (SubmitOutcome, error) {
	existing, err := s.repo.GetCompletion(ctx, nil, p.ID, challengeID)
	if err != nil {
		if errors.Is(err, ledgerdb.ErrNotFound) {
			return s.rejectAfterRollback(ctx, p, challengeID, flag, ledgerdomain.ReasonAlreadyCompleted)
		}
		return SubmitOutcome{}, err
	}
	sub, err := s.logSubmission(ctx, nil, p, challengeID, flag, true, 0)
	if err != nil {
		return SubmitOutcome{}, err
	}
	return results.SuccessResult[ledgerdomain.SubmitResult, error](
		ledgerdomain.AlreadyCompleted(sub.ID, existing.PointsEarned, existing.FirstForCohort)), nil
}

func (s *LedgerService) logSubmission(ctx context.Context, db bun.IDB, p *ledgerdb.Participant, challengeID uuid.UUID, flag string, correct bool, points int) (*ledgerdb.Submission, error) {
	sub := &ledgerdb.Submission{
		ParticipantID: p.ID,
		ChallengeID:   challengeID,
		CohortID:      p.CohortID,
		SubmittedFlag: flag,
		Correct:       correct,
		PointsAwarded: points,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.repo.InsertSubmission(ctx, db, sub); err != nil {
		return nil, fmt.Errorf("failed to log submission: %w", err)
	}
	return sub, nil
}

// notify runs after commit. It is bounded by notifyTimeout, detached from
// the request's cancellation, and never fails the submission. Outcomes are
// counted by the notifier.
func (s *LedgerService) notify(ctx context.Context, ev ledgerdomain.FirstSolve) {
	if s.notifier == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	start := time.Now()
	if err := s.notifier.FirstSolve(nctx, ev); err != nil {
		s.logger.WarnContext(ctx, "First-solve notification failed",
			attr.UUID("challenge_id", ev.ChallengeID),
			attr.UUID("cohort_id", ev.CohortID),
			attr.Duration("elapsed", time.Since(start)),
			attr.Error(err),
		)
	}
}

func cohortName(p *ledgerdb.Participant) string {
	if p.Cohort != nil {
		return p.Cohort.Name
	}
	return p.CohortID.String()
}
