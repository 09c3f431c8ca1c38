package challengeservice

import (
	"context"
	"errors"
	"fmt"
	"slices"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SetPrerequisites replaces the prerequisite set and required count of an
// unlocking challenge. The whole graph is loaded under an advisory lock and
// the edit is checked for cycles before any write.
func (s *ChallengeService) SetPrerequisites(ctx context.Context, id uuid.UUID, prerequisites []uuid.UUID, requiredCount int) (ChallengeResult, error) {
	return withTelemetry(s, ctx, "SetPrerequisites", id.String(), func(ctx context.Context) (ChallengeResult, error) {
		if requiredCount < 0 {
			return results.FailureResult[challengedomain.Challenge, error](
				fmt.Errorf("%w: required count cannot be negative", challengedomain.ErrInvalidChallenge)), nil
		}
		next := dedupe(prerequisites)

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ChallengeResult, error) {
			if err := s.repo.AcquireGraphLock(ctx, db); err != nil {
				return ChallengeResult{}, err
			}

			row, err := s.repo.GetChallenge(ctx, db, id)
			if err != nil {
				if errors.Is(err, challengedb.ErrNotFound) {
					return results.FailureResult[challengedomain.Challenge, error](ErrChallengeNotFound), nil
				}
				return ChallengeResult{}, err
			}
			if row.Type != challengedomain.TypeUnlocking && (len(next) > 0 || requiredCount != 0) {
				return results.FailureResult[challengedomain.Challenge, error](ErrNotUnlocking), nil
			}

			graph, err := s.repo.GetPrerequisiteGraph(ctx, db)
			if err != nil {
				return ChallengeResult{}, err
			}
			if err := challengedomain.ValidatePrerequisiteEdit(graph, id, next); err != nil {
				s.logger.WarnContext(ctx, "Rejected prerequisite edit",
					attr.UUID("challenge_id", id),
					attr.Int("prerequisites", len(next)),
					attr.Error(err),
				)
				return results.FailureResult[challengedomain.Challenge, error](describeEditError(err, row.Name)), nil
			}

			if err := s.repo.ReplacePrerequisites(ctx, db, id, requiredCount, next); err != nil {
				return ChallengeResult{}, fmt.Errorf("failed to replace prerequisites: %w", err)
			}

			row.RequiredCount = requiredCount
			return results.SuccessResult[challengedomain.Challenge, error](row.ToDomain(next)), nil
		})
	})
}

// CheckGraph fails when the stored prerequisite graph contains a cycle.
// Callers treat that as a fatal configuration error.
func (s *ChallengeService) CheckGraph(ctx context.Context) error {
	graph, err := s.repo.GetPrerequisiteGraph(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to load prerequisite graph: %w", err)
	}
	if err := graph.Validate(); err != nil {
		s.logger.ErrorContext(ctx, "Prerequisite graph contains a cycle", attr.Error(err))
		return err
	}
	return nil
}

// describeEditError keeps the sentinel for errors.Is and adds the challenge
// name so admins can see which edit was refused.
func describeEditError(err error, name string) error {
	var cycleErr *challengedomain.CycleError
	if errors.As(err, &cycleErr) {
		return fmt.Errorf("requiring these challenges from %q would create a cycle through %d challenges: %w",
			name, len(cycleErr.Path)-1, err)
	}
	return fmt.Errorf("invalid prerequisites for %q: %w", name, err)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
