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

// ReleaseChallenge opens a challenge immediately.
func (s *ChallengeService) ReleaseChallenge(ctx context.Context, id uuid.UUID) (ChallengeResult, error) {
	return withTelemetry(s, ctx, "ReleaseChallenge", id.String(), func(ctx context.Context) (ChallengeResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ChallengeResult, error) {
			row, err := s.repo.LockChallenge(ctx, db, id)
			if err != nil {
				if errors.Is(err, challengedb.ErrNotFound) {
					return results.FailureResult[challengedomain.Challenge, error](ErrChallengeNotFound), nil
				}
				return ChallengeResult{}, err
			}
			if _, err := s.repo.MarkReleased(ctx, db, []uuid.UUID{id}); err != nil {
				return ChallengeResult{}, err
			}
			row.Released = true
			return results.SuccessResult[challengedomain.Challenge, error](row.ToDomain(nil)), nil
		})
	})
}

// ScheduleRelease sets a timed release from natural language or RFC3339 input.
func (s *ChallengeService) ScheduleRelease(ctx context.Context, id uuid.UUID, when string, timezone string) (ChallengeResult, error) {
	return withTelemetry(s, ctx, "ScheduleRelease", id.String(), func(ctx context.Context) (ChallengeResult, error) {
		releaseAt, err := s.parser.Parse(when, timezone, s.clock.Now())
		if err != nil {
			return results.FailureResult[challengedomain.Challenge, error](err), nil
		}

		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ChallengeResult, error) {
			row, err := s.repo.LockChallenge(ctx, db, id)
			if err != nil {
				if errors.Is(err, challengedb.ErrNotFound) {
					return results.FailureResult[challengedomain.Challenge, error](ErrChallengeNotFound), nil
				}
				return ChallengeResult{}, err
			}

			row.TimedRelease = true
			row.ReleaseAt = releaseAt
			row.Released = false
			if err := s.repo.UpdateChallenge(ctx, db, row); err != nil {
				return ChallengeResult{}, fmt.Errorf("failed to schedule release: %w", err)
			}

			s.logger.InfoContext(ctx, "Challenge release scheduled",
				attr.UUID("challenge_id", id),
				attr.Time("release_at", releaseAt),
			)
			return results.SuccessResult[challengedomain.Challenge, error](row.ToDomain(nil)), nil
		})
	})
}

// ReleaseDueChallenges opens every timed challenge whose release time has
// passed. A dry run reports them without writing.
func (s *ChallengeService) ReleaseDueChallenges(ctx context.Context, dryRun bool) (ReleaseResult, error) {
	return withTelemetry(s, ctx, "ReleaseDueChallenges", "", func(ctx context.Context) (ReleaseResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (ReleaseResult, error) {
			now := s.clock.Now()
			due, err := s.repo.ListDueReleases(ctx, db, now)
			if err != nil {
				return ReleaseResult{}, err
			}

			summary := ReleaseSummary{DryRun: dryRun}
			ids := make([]uuid.UUID, 0, len(due))
			for i := range due {
				ids = append(ids, due[i].ID)
				d := due[i].ToDomain(nil)
				d.Released = !dryRun
				summary.Released = append(summary.Released, d)
			}

			if !dryRun && len(ids) > 0 {
				n, err := s.repo.MarkReleased(ctx, db, ids)
				if err != nil {
					return ReleaseResult{}, err
				}
				s.logger.InfoContext(ctx, "Released timed challenges",
					attr.Int("count", n),
					attr.Time("now", now),
				)
			}
			return results.SuccessResult[ReleaseSummary, error](summary), nil
		})
	})
}
