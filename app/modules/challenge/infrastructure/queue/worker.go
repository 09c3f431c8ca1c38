package challengequeue

import (
	"context"
	"fmt"
	"log/slog"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/riverqueue/river"
)

// Releaser is the slice of the challenge service the worker drives.
type Releaser interface {
	ReleaseDueChallenges(ctx context.Context, dryRun bool) (challengeservice.ReleaseResult, error)
}

// ReleaseWorker runs ReleaseTimedChallengesJob.
type ReleaseWorker struct {
	river.WorkerDefaults[ReleaseTimedChallengesJob]
	logger   *slog.Logger
	releaser Releaser
}

// NewReleaseWorker creates the worker.
func NewReleaseWorker(logger *slog.Logger, releaser Releaser) *ReleaseWorker {
	return &ReleaseWorker{logger: logger, releaser: releaser}
}

// Work opens due challenges. A failure result is logged and the job still
// completes; the next tick retries naturally.
func (w *ReleaseWorker) Work(ctx context.Context, job *river.Job[ReleaseTimedChallengesJob]) error {
	res, err := w.releaser.ReleaseDueChallenges(ctx, job.Args.DryRun)
	if err != nil {
		return fmt.Errorf("release due challenges: %w", err)
	}
	if res.IsFailure() {
		w.logger.WarnContext(ctx, "Timed release refused",
			attr.Int64("job_id", job.ID),
			attr.Error(*res.Failure),
		)
		return nil
	}

	if n := len(res.Success.Released); n > 0 {
		names := make([]string, 0, n)
		for _, c := range res.Success.Released {
			names = append(names, c.Name)
		}
		w.logger.InfoContext(ctx, "Timed challenges released",
			attr.Int64("job_id", job.ID),
			attr.Int("count", n),
			attr.Any("challenges", names),
			attr.Bool("dry_run", job.Args.DryRun),
		)
	}
	return nil
}
