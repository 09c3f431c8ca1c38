package ledgerservice

import (
	"context"
	"errors"
	"fmt"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	ledgerdomain "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/domain"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// InvalidateCompletion removes an award and everything derived from it.
func (s *LedgerService) InvalidateCompletion(ctx context.Context, completionID, actorID uuid.UUID) (InvalidationOutcome, error) {
	return withTelemetry(s, ctx, "InvalidateCompletion", completionID.String(), func(ctx context.Context) (InvalidationOutcome, error) {
		if completionID == uuid.Nil || actorID == uuid.Nil {
			return invalidationFailure(fmt.Errorf("%w: completion and actor ids are required", ErrValidation)), nil
		}

		// The unlocked read only tells us which challenge row to lock.
		target, err := s.repo.GetCompletionByID(ctx, nil, completionID)
		if err != nil {
			if errors.Is(err, ledgerdb.ErrNotFound) {
				return invalidationFailure(fmt.Errorf("%w: completion %s", ErrNotFound, completionID)), nil
			}
			return InvalidationOutcome{}, err
		}

		out, err := runInTx(s, ctx, "InvalidateCompletion", func(ctx context.Context, tx bun.IDB) (InvalidationOutcome, error) {
			challenge, err := s.lockForReversal(ctx, tx, target.ChallengeID)
			if err != nil {
				return InvalidationOutcome{}, err
			}
			completion, err := s.repo.GetCompletionByID(ctx, tx, completionID)
			if err != nil {
				if errors.Is(err, ledgerdb.ErrNotFound) {
					return invalidationFailure(fmt.Errorf("%w: completion %s", ErrNotFound, completionID)), nil
				}
				return InvalidationOutcome{}, err
			}
			return s.reverse(ctx, tx, challenge, completion, actorID, ledgerdb.ActionInvalidateCompletion, "completion", completion.ID)
		})
		if err == nil && out.IsSuccess() {
			s.metrics.RecordInvalidation(ctx)
		}
		return out, err
	})
}

// InvalidateSubmission reverses the completion produced by a submission.
// Submissions that never awarded anything report ErrNoCompletion.
func (s *LedgerService) InvalidateSubmission(ctx context.Context, submissionID, actorID uuid.UUID) (InvalidationOutcome, error) {
	return withTelemetry(s, ctx, "InvalidateSubmission", submissionID.String(), func(ctx context.Context) (InvalidationOutcome, error) {
		if submissionID == uuid.Nil || actorID == uuid.Nil {
			return invalidationFailure(fmt.Errorf("%w: submission and actor ids are required", ErrValidation)), nil
		}

		sub, err := s.repo.GetSubmission(ctx, nil, submissionID)
		if err != nil {
			if errors.Is(err, ledgerdb.ErrNotFound) {
				return invalidationFailure(fmt.Errorf("%w: submission %s", ErrNotFound, submissionID)), nil
			}
			return InvalidationOutcome{}, err
		}
		if sub.Invalidated {
			return invalidationFailure(fmt.Errorf("%w: submission %s", ErrAlreadyInvalidated, submissionID)), nil
		}

		out, err := runInTx(s, ctx, "InvalidateSubmission", func(ctx context.Context, tx bun.IDB) (InvalidationOutcome, error) {
			challenge, err := s.lockForReversal(ctx, tx, sub.ChallengeID)
			if err != nil {
				return InvalidationOutcome{}, err
			}
			locked, err := s.repo.LockSubmission(ctx, tx, submissionID)
			if err != nil {
				return InvalidationOutcome{}, err
			}
			if locked.Invalidated {
				return invalidationFailure(fmt.Errorf("%w: submission %s", ErrAlreadyInvalidated, submissionID)), nil
			}
			completion, err := s.repo.GetCompletionBySubmission(ctx, tx, submissionID)
			if err != nil {
				if errors.Is(err, ledgerdb.ErrNotFound) {
					return invalidationFailure(fmt.Errorf("%w: submission %s", ErrNoCompletion, submissionID)), nil
				}
				return InvalidationOutcome{}, err
			}
			return s.reverse(ctx, tx, challenge, completion, actorID, ledgerdb.ActionInvalidateSubmission, "submission", submissionID)
		})
		if err == nil && out.IsSuccess() {
			s.metrics.RecordInvalidation(ctx)
		}
		return out, err
	})
}

func (s *LedgerService) lockForReversal(ctx context.Context, tx bun.IDB, challengeID uuid.UUID) (challengedomain.Challenge, error) {
	row, err := s.challengeRepo.LockChallenge(ctx, tx, challengeID)
	if err != nil {
		if errors.Is(err, challengedb.ErrNotFound) {
			return challengedomain.Challenge{}, fmt.Errorf("challenge %s vanished under completion: %w", challengeID, err)
		}
		return challengedomain.Challenge{}, err
	}
	return row.ToDomain(nil), nil
}

// reverse runs with the challenge row locked. It deletes the completion,
// reopens an exclusive challenge when the cohort no longer holds it,
// hands first-for-cohort to the next earliest solver, zeroes the
// submission and writes the audit entry. Dependents that were unlocked by
// this completion are not touched; availability is recomputed on read.
func (s *LedgerService) reverse(
	ctx context.Context,
	tx bun.IDB,
	challenge challengedomain.Challenge,
	completion *ledgerdb.Completion,
	actorID uuid.UUID,
	action string,
	targetType string,
	targetID uuid.UUID,
) (InvalidationOutcome, error) {
	snapshot := completion.Snapshot()
	snapshot["challenge_locked"] = challenge.Locked

	if err := s.repo.DeleteCompletion(ctx, tx, completion.ID); err != nil {
		return InvalidationOutcome{}, err
	}

	remaining, err := s.repo.CohortHasCompletion(ctx, tx, completion.ChallengeID, completion.CohortID)
	if err != nil {
		return InvalidationOutcome{}, err
	}

	inv := ledgerdomain.Invalidation{
		CompletionID:  completion.ID,
		SubmissionID:  completion.SubmissionID,
		ParticipantID: completion.ParticipantID,
		ChallengeID:   completion.ChallengeID,
		CohortID:      completion.CohortID,
		PointsRemoved: completion.PointsEarned,
	}

	if !remaining && challenge.Type == challengedomain.TypeExclusive && challenge.Locked {
		released, err := s.challengeRepo.ReleaseExclusive(ctx, tx, challenge.ID)
		if err != nil {
			return InvalidationOutcome{}, err
		}
		inv.Reopened = released
	}

	if remaining && completion.FirstForCohort {
		next, err := s.repo.EarliestCohortCompletion(ctx, tx, completion.ChallengeID, completion.CohortID)
		if err != nil {
			return InvalidationOutcome{}, err
		}
		if err := s.repo.PromoteFirstForCohort(ctx, tx, next.ID); err != nil {
			return InvalidationOutcome{}, err
		}
		inv.Promoted = next.ID
	}

	if err := s.repo.MarkSubmissionInvalidated(ctx, tx, completion.SubmissionID, actorID, s.clock.Now()); err != nil {
		if errors.Is(err, ledgerdb.ErrNoRowsAffected) {
			return invalidationFailure(fmt.Errorf("%w: submission %s", ErrAlreadyInvalidated, completion.SubmissionID)), nil
		}
		return InvalidationOutcome{}, err
	}

	snapshot["reopened"] = inv.Reopened
	if inv.Promoted != uuid.Nil {
		snapshot["promoted_completion_id"] = inv.Promoted
	}
	entry := &ledgerdb.AuditEntry{
		Action:     action,
		ActorID:    actorID,
		TargetType: targetType,
		TargetID:   targetID,
		Snapshot:   snapshot,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.InsertAuditEntry(ctx, tx, entry); err != nil {
		return InvalidationOutcome{}, err
	}

	inv.Message = invalidationMessage(challenge.Name, inv)
	s.logger.InfoContext(ctx, "Completion invalidated",
		attr.UUID("completion_id", inv.CompletionID),
		attr.UUID("challenge_id", inv.ChallengeID),
		attr.UUID("cohort_id", inv.CohortID),
		attr.UUID("actor_id", actorID),
		attr.Int("points_removed", inv.PointsRemoved),
		attr.Bool("reopened", inv.Reopened),
	)
	return results.SuccessResult[ledgerdomain.Invalidation, error](inv), nil
}

func invalidationMessage(challengeName string, inv ledgerdomain.Invalidation) string {
	msg := fmt.Sprintf("Removed %d points on %q", inv.PointsRemoved, challengeName)
	if inv.Reopened {
		msg += "; challenge reopened"
	}
	if inv.Promoted != uuid.Nil {
		msg += "; first solve passed to the next cohort member"
	}
	return msg
}

func invalidationFailure(err error) InvalidationOutcome {
	return results.FailureResult[ledgerdomain.Invalidation, error](err)
}
