package ledger

import (
	"context"
	"log/slog"

	challengedb "github.com/Black-And-White-Club/flag-hunt/app/modules/challenge/infrastructure/repositories"
	ledgerservice "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/application"
	ledgerhandlers "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/handlers"
	ledgerdb "github.com/Black-And-White-Club/flag-hunt/app/modules/ledger/infrastructure/repositories"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/httpmw"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"golang.org/x/time/rate"
)

// Module wires the completion ledger and its HTTP routes.
type Module struct {
	repo    ledgerdb.Repository
	service ledgerservice.Service
	logger  *slog.Logger
}

// NewModule creates the ledger module. Either router may be nil for CLI use;
// adminRouter must already be guarded by the actor middleware. notifier may
// be nil when first-solve announcements are disabled.
func NewModule(
	ctx context.Context,
	cfg *config.Config,
	obs observability.Observability,
	db *bun.DB,
	publicRouter chi.Router,
	adminRouter chi.Router,
	challengeRepo challengedb.Repository,
	notifier ledgerservice.FirstSolveNotifier,
	clk clock.Clock,
) (*Module, error) {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing ledger module")

	repo := ledgerdb.NewRepository(db)
	service := ledgerservice.NewLedgerService(
		repo,
		challengeRepo,
		logger,
		obs.Metrics,
		obs.Tracer,
		db,
		clk,
		cfg.Hunt,
		notifier,
		ledgerservice.Config{NotifyTimeout: cfg.Notifications.PublishTimeout},
	)

	handlers := ledgerhandlers.NewLedgerHandlers(service, logger, obs.Tracer)
	if publicRouter != nil {
		limiter := httpmw.NewClientLimiter(rate.Limit(cfg.HTTP.SubmitRateLimit), cfg.HTTP.SubmitBurst)
		ledgerhandlers.Routes(publicRouter, handlers, limiter)
	}
	if adminRouter != nil {
		ledgerhandlers.AdminRoutes(adminRouter, handlers)
	}

	return &Module{repo: repo, service: service, logger: logger}, nil
}

// GetService returns the ledger service for the CLI and other modules.
func (m *Module) GetService() ledgerservice.Service {
	return m.service
}

// Close is a no-op; the ledger holds no background workers.
func (m *Module) Close() error {
	m.logger.Info("Stopping ledger module")
	return nil
}
