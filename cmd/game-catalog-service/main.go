package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/timkado/api/game-catalog-service/internal/bootstrap"
	"gitlab.com/timkado/api/game-catalog-service/pkg/contextkeys"
)

func main() {
	// Root context for the application; cancelled on SIGINT/SIGTERM so the config
	// watchers stop together with the HTTP server.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = context.WithValue(ctx, contextkeys.RequestIDKey, "app-main")

	// Initialize the application using the Wire-generated injector.
	app, cleanup, err := bootstrap.InitializeApp(ctx)
	if err != nil {
		// A very basic log if bootstrap fails, as the main logger isn't available.
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}
	// Defer the cleanup function to ensure resources are released on exit.
	defer cleanup()

	// The Run method handles server start and graceful shutdown.
	if err := app.Run(ctx); err != nil {
		fmt.Printf("Application run failed: %v\n", err)
		cleanup()
		os.Exit(1)
	}

	fmt.Println("Application exited gracefully.")
}
