package challengeservice

import (
	"context"
	"errors"
	"fmt"

	challengedomain "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/domain"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CreateChallenge validates and stores a new challenge.
func (s *ChallengeService) CreateChallenge(ctx context.Context, in ChallengeInput) (ChallengeResult, error) {
	return withTelemetry(s, ctx, "CreateChallenge", "", func(ctx context.Context) (ChallengeResult, error) {
		d := in.toDomain(uuid.Nil)
		if err := d.Validate(); err != nil {
			return results.FailureResult[challengedomain.Challenge, error](err), nil
		}

		row := challengedb.FromDomain(d)
		if err := s.repo.CreateChallenge(ctx, nil, row); err != nil {
			return ChallengeResult{}, fmt.Errorf("failed to create challenge: %w", err)
		}

		s.logger.InfoContext(ctx, "Challenge created",
			attr.UUID("challenge_id", row.ID),
			attr.String("type", string(row.Type)),
			attr.Int("points", row.Points),
		)
		return results.SuccessResult[challengedomain.Challenge, error](row.ToDomain(nil)), nil
	})
}

// UpdateChallenge replaces the editable fields. Past completions keep the
// points they were awarded.
func (s *ChallengeService) UpdateChallenge(ctx context.Context, id uuid.UUID, in ChallengeInput) (ChallengeResult, error) {
	return withTelemetry(s, ctx, "UpdateChallenge", id.String(), func(ctx context.Context) (ChallengeResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ChallengeResult, error) {
			current, err := s.repo.LockChallenge(ctx, db, id)
			if err != nil {
				if errors.Is(err, challengedb.ErrNotFound) {
					return results.FailureResult[challengedomain.Challenge, error](ErrChallengeNotFound), nil
				}
				return ChallengeResult{}, err
			}
			if current.Locked && current.Type != in.Type {
				return results.FailureResult[challengedomain.Challenge, error](ErrLockedTypeChange), nil
			}

			prereqs, err := s.repo.GetPrerequisites(ctx, db, id)
			if err != nil {
				return ChallengeResult{}, err
			}

			d := in.toDomain(id)
			d.Locked = current.Locked
			if d.Type == challengedomain.TypeExclusive && current.Type != challengedomain.TypeExclusive {
				cohorts, err := s.repo.CountSolvingCohorts(ctx, db, id)
				if err != nil {
					return ChallengeResult{}, err
				}
				if cohorts > 1 {
					return results.FailureResult[challengedomain.Challenge, error](
						fmt.Errorf("%w: %d cohorts", ErrExclusiveConflict, cohorts)), nil
				}
				// The single cohort that already solved it holds the claim.
				d.Locked = cohorts == 1
			}
			d.RequiredCount = current.RequiredCount
			d.Prerequisites = prereqs
			if err := d.Validate(); err != nil {
				return results.FailureResult[challengedomain.Challenge, error](err), nil
			}

			row := challengedb.FromDomain(d)
			row.CreatedAt = current.CreatedAt
			if err := s.repo.UpdateChallenge(ctx, db, row); err != nil {
				return ChallengeResult{}, fmt.Errorf("failed to update challenge: %w", err)
			}
			return results.SuccessResult[challengedomain.Challenge, error](d), nil
		})
	})
}

// GetChallenge loads a challenge with its prerequisites.
func (s *ChallengeService) GetChallenge(ctx context.Context, id uuid.UUID) (ChallengeResult, error) {
	row, err := s.repo.GetChallenge(ctx, nil, id)
	if err != nil {
		if errors.Is(err, challengedb.ErrNotFound) {
			return results.FailureResult[challengedomain.Challenge, error](ErrChallengeNotFound), nil
		}
		return ChallengeResult{}, err
	}
	prereqs, err := s.repo.GetPrerequisites(ctx, nil, id)
	if err != nil {
		return ChallengeResult{}, err
	}
	return results.SuccessResult[challengedomain.Challenge, error](row.ToDomain(prereqs)), nil
}

// ListChallenges returns every challenge in display order.
func (s *ChallengeService) ListChallenges(ctx context.Context) ([]challengedomain.Challenge, error) {
	rows, err := s.repo.ListChallenges(ctx, nil)
	if err != nil {
		return nil, err
	}
	graph, err := s.repo.GetPrerequisiteGraph(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]challengedomain.Challenge, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].ToDomain(graph[rows[i].ID]))
	}
	return out, nil
}

func (in ChallengeInput) toDomain(id uuid.UUID) challengedomain.Challenge {
	typ := in.Type
	if typ == "" {
		typ = challengedomain.TypeNormal
	}
	return challengedomain.Challenge{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		Category:     in.Category,
		Flag:         in.Flag,
		Points:       in.Points,
		Type:         typ,
		DecayPercent: in.DecayPercent,
		Released:     in.Released,
		TimedRelease: in.TimedRelease,
		ReleaseAt:    in.ReleaseAt,
		SortOrder:    in.SortOrder,
	}
}
