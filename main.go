package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/flag-hunt/app"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := &app.App{}
	if err := application.Initialize(ctx, *configPath); err != nil {
		application.Close()
		log.Fatalf("Failed to initialize application: %v", err)
	}

	runErr := application.Run(ctx)
	application.Close()
	if runErr != nil {
		application.Logger.Error("Application stopped with error", "error", runErr)
		os.Exit(1)
	}
	application.Logger.Info("Graceful shutdown complete")
}
