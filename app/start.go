package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 15 * time.Second

// Run starts the background modules and the HTTP server, then blocks until
// ctx is cancelled and shuts the server down.
func (app *App) Run(ctx context.Context) error {
	app.wg.Add(2)
	go app.Modules.ChallengeModule.Run(ctx, &app.wg)
	go app.Modules.NotificationModule.Run(ctx, &app.wg)

	srv := &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.Logger.InfoContext(ctx, "HTTP server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		app.Logger.Info("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	app.Logger.Info("HTTP server stopped")
	return nil
}
