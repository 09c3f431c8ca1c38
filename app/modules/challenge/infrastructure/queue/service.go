package challengequeue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability/attr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/uptrace/bun"
)

// QueueService defines the contract for the challenge release scheduler.
type QueueService interface {
	// TriggerRelease enqueues an immediate release pass.
	TriggerRelease(ctx context.Context) error
	// GetReleaseJobs returns recent release jobs (for debugging)
	GetReleaseJobs(ctx context.Context, limit int) ([]JobInfo, error)
	HealthCheck(ctx context.Context) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

var _ QueueService = (*Service)(nil)

// Config controls the periodic release pass.
type Config struct {
	ReleaseInterval time.Duration
	MaxWorkers      int
}

// Service runs the periodic timed-release job on River.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	db      *bun.DB
	metrics observability.HuntMetrics
}

// NewService creates a River client with the release worker registered and a
// periodic job firing every cfg.ReleaseInterval.
func NewService(ctx context.Context, bunDB *bun.DB, logger *slog.Logger, dsn string, cfg Config, metrics observability.HuntMetrics, releaser Releaser) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("operation", "new_challenge_queue_service"),
		attr.String("component", "river_queue"),
	)

	start := time.Now()
	metrics.RecordOperationAttempt(ctx, "initialize_queue")

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		ctxLogger.Error("Failed to ping database for River", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReleaseWorker(ctxLogger, releaser))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 1},
			QueueName:          {MaxWorkers: max(cfg.MaxWorkers, 1)},
		},
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.ReleaseInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return ReleaseTimedChallengesJob{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
		Workers: workers,
	})
	if err != nil {
		pool.Close()
		ctxLogger.Error("Failed to create River client", attr.Error(err))
		metrics.RecordOperationFailure(ctx, "initialize_queue")
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	metrics.RecordOperationSuccess(ctx, "initialize_queue")
	metrics.RecordOperationDuration(ctx, "initialize_queue", time.Since(start))
	ctxLogger.Info("Challenge queue service initialized",
		attr.Duration("release_interval", cfg.ReleaseInterval))

	return &Service{
		client:  riverClient,
		pool:    pool,
		logger:  ctxLogger,
		db:      bunDB,
		metrics: metrics,
	}, nil
}

// Start starts the River client.
func (s *Service) Start(ctx context.Context) error {
	if err := s.client.Start(ctx); err != nil {
		s.logger.Error("Failed to start River client", attr.Error(err))
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.logger.Info("Challenge queue service started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.logger.Error("Failed to stop River client", attr.Error(err))
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.logger.Info("Challenge queue service stopped")
	return nil
}

// TriggerRelease enqueues a release pass to run now.
func (s *Service) TriggerRelease(ctx context.Context) error {
	res, err := s.client.Insert(ctx, ReleaseTimedChallengesJob{}, nil)
	if err != nil {
		return fmt.Errorf("failed to enqueue release job: %w", err)
	}
	s.logger.InfoContext(ctx, "Release job enqueued", attr.Int64("job_id", res.Job.ID))
	return nil
}

// GetReleaseJobs lists the most recent release jobs.
func (s *Service) GetReleaseJobs(ctx context.Context, limit int) ([]JobInfo, error) {
	type riverJobRow struct {
		ID          int64      `bun:"id"`
		Kind        string     `bun:"kind"`
		State       string     `bun:"state"`
		ScheduledAt *time.Time `bun:"scheduled_at"`
		CreatedAt   time.Time  `bun:"created_at"`
		Attempt     int16      `bun:"attempt"`
		MaxAttempts int16      `bun:"max_attempts"`
	}

	var jobs []riverJobRow
	err := s.db.NewSelect().
		Table("river_job").
		Column("id", "kind", "state", "scheduled_at", "created_at", "attempt", "max_attempts").
		Where("kind = ?", ReleaseTimedChallengesJob{}.Kind()).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx, &jobs)
	if err != nil {
		return nil, fmt.Errorf("failed to query release jobs: %w", err)
	}

	out := make([]JobInfo, len(jobs))
	for i, job := range jobs {
		scheduledAt := ""
		if job.ScheduledAt != nil {
			scheduledAt = job.ScheduledAt.Format(time.RFC3339)
		}
		out[i] = JobInfo{
			ID:          job.ID,
			Kind:        job.Kind,
			State:       job.State,
			ScheduledAt: scheduledAt,
			CreatedAt:   job.CreatedAt.Format(time.RFC3339),
			Attempt:     int(job.Attempt),
			MaxAttempts: int(job.MaxAttempts),
		}
	}
	return out, nil
}

// HealthCheck verifies the queue tables are reachable.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	var count int
	if err := s.db.NewSelect().Table("river_job").ColumnExpr("COUNT(*)").Scan(ctx, &count); err != nil {
		s.logger.Error("Queue service health check failed", attr.Error(err))
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	s.logger.Debug("Queue service health check passed", attr.Int("total_jobs", count))
	return nil
}
