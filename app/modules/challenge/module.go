package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	challengeservice "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/application"
	challengehandlers "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/handlers"
	challengequeue "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/queue"
	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Module wires the challenge catalog, its admin routes and the timed release queue.
type Module struct {
	repo         challengedb.Repository
	service      challengeservice.Service
	queueService challengequeue.QueueService
	logger       *slog.Logger
	cancelFunc   context.CancelFunc
}

// NewModule creates the challenge module. adminRouter is already guarded by
// the actor middleware; it may be nil for CLI use.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	adminRouter chi.Router,
	clk clock.Clock,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing challenge module")

	repo := challengedb.NewRepository(db)
	service := challengeservice.NewChallengeService(repo, logger, obs.Metrics, obs.Tracer, db, clk)

	// A cyclic stored graph is fatal; availability checks must never run over it.
	if err := service.CheckGraph(ctx); err != nil {
		return nil, fmt.Errorf("prerequisite graph check failed: %w", err)
	}

	queueService, err := challengequeue.NewService(ctx, db, logger, cfg.Postgres.DSN, challengequeue.Config{
		ReleaseInterval: cfg.Queue.ReleaseInterval,
		MaxWorkers:      cfg.Queue.MaxWorkers,
	}, obs.Metrics, service)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge queue service: %w", err)
	}

	if adminRouter != nil {
		challengehandlers.Routes(adminRouter, challengehandlers.NewChallengeHandlers(service, logger, obs.Tracer))
	}

	return &Module{
		repo:         repo,
		service:      service,
		queueService: queueService,
		logger:       logger,
	}, nil
}

// Run starts the release queue and blocks until ctx is cancelled.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	if wg != nil {
		defer wg.Done()
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if err := m.queueService.Start(ctx); err != nil {
		m.logger.ErrorContext(ctx, "Failed to start challenge queue", "error", err)
		return
	}
	m.logger.InfoContext(ctx, "Challenge module started")

	<-ctx.Done()
	m.logger.InfoContext(ctx, "Challenge module goroutine stopped")
}

// Close stops the release queue.
func (m *Module) Close() error {
	m.logger.Info("Stopping challenge module")
	// Stop before cancelling so running release jobs finish.
	if m.queueService != nil {
		if err := m.queueService.Stop(context.Background()); err != nil {
			return fmt.Errorf("error stopping challenge queue: %w", err)
		}
	}
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}

// GetService returns the challenge service for use by other modules.
func (m *Module) GetService() challengeservice.Service {
	return m.service
}

// GetRepository returns the challenge repository; the ledger locks challenge
// rows through it inside its own transactions.
func (m *Module) GetRepository() challengedb.Repository {
	return m.repo
}
