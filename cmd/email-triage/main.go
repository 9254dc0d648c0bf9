package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-triage/internal/di"
	"github.com/mikey/email-triage/internal/factory"
	"github.com/mikey/email-triage/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(logger *zap.Logger, emailFilter ports.EmailFilter, closers *factory.Closers) error {
	defer logger.Sync()
	defer func() {
		if err := closers.Close(); err != nil {
			logger.Error("Failed to release resources", zap.Error(err))
		}
	}()

	if err := emailFilter.Start(); err != nil {
		logger.Error("Failed to start filter", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down...", zap.String("signal", sig.String()))

	if err := emailFilter.Stop(); err != nil {
		logger.Error("Failed to stop filter", zap.Error(err))
	}

	logger.Info("Shutdown complete")
	return nil
}
