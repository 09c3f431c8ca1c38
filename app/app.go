package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Black-And-White-Club/flag-hunt/app/modules/challenge"
	"github.com/Black-And-White-Club/flag-hunt/app/modules/ledger"
	"github.com/Black-And-White-Club/flag-hunt/app/modules/notification"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/clock"
	"github.com/Black-And-White-Club/flag-hunt/app/shared/observability"
	"github.com/Black-And-White-Club/flag-hunt/config"
	"github.com/Black-And-White-Club/flag-hunt/db/bundb"
	"github.com/go-chi/chi/v5"
)

// App holds the shared infrastructure and every module.
type App struct {
	Config        *config.Config
	Observability observability.Observability
	Logger        *slog.Logger
	DB            *bundb.DBService
	Router        chi.Router
	Modules       *Modules

	wg sync.WaitGroup
}

// Modules groups the module instances so shutdown can walk them in order.
type Modules struct {
	ChallengeModule    *challenge.Module
	LedgerModule       *ledger.Module
	NotificationModule *notification.Module
}

// Initialize loads config, connects to Postgres and builds every module.
func (app *App) Initialize(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	app.Observability = observability.New(observability.Config{
		Environment: cfg.Observability.Environment,
		LogLevel:    cfg.Observability.LogLevel,
	})
	app.Logger = app.Observability.Logger
	app.Logger.InfoContext(ctx, "Configuration loaded")

	app.DB, err = bundb.NewBunDBService(ctx, cfg.Postgres, app.Logger)
	if err != nil {
		return err
	}

	router, publicAPI, adminAPI := newRouter(app.Logger, app.Observability.Registry, app.DB)
	app.Router = router

	return app.initializeModules(ctx, publicAPI, adminAPI)
}

func (app *App) initializeModules(ctx context.Context, publicAPI, adminAPI chi.Router) error {
	clk := clock.Real{}
	db := app.DB.GetDB()

	challengeModule, err := challenge.NewModule(ctx, app.Config, app.Observability, db, adminAPI, clk)
	if err != nil {
		return fmt.Errorf("failed to initialize challenge module: %w", err)
	}

	notificationModule, err := notification.NewModule(ctx, app.Config, app.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize notification module: %w", err)
	}

	ledgerModule, err := ledger.NewModule(ctx, app.Config, app.Observability, db, publicAPI, adminAPI,
		challengeModule.GetRepository(), notificationModule.Publisher(), clk)
	if err != nil {
		return fmt.Errorf("failed to initialize ledger module: %w", err)
	}

	app.Modules = &Modules{
		ChallengeModule:    challengeModule,
		LedgerModule:       ledgerModule,
		NotificationModule: notificationModule,
	}
	return nil
}

// Close stops modules before closing the database pool.
func (app *App) Close() {
	if app.Modules != nil {
		if err := app.Modules.ChallengeModule.Close(); err != nil {
			app.Logger.Error("Error closing challenge module", slog.Any("error", err))
		}
		if err := app.Modules.LedgerModule.Close(); err != nil {
			app.Logger.Error("Error closing ledger module", slog.Any("error", err))
		}
		if err := app.Modules.NotificationModule.Close(); err != nil {
			app.Logger.Error("Error closing notification module", slog.Any("error", err))
		}
	}
	app.wg.Wait()

	if app.DB != nil {
		if err := app.DB.Close(); err != nil && app.Logger != nil {
			app.Logger.Error("Error closing database", slog.Any("error", err))
		}
	}
}
