package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/YashviSoni04/email-phishing-analyzer/internal/core"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/di"
	"github.com/YashviSoni04/email-phishing-analyzer/internal/ports"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	transports []ports.Transport,
	store core.ResultStore,
	urlChecker core.URLChecker,
	classifier core.TextClassifier,
) error {
	defer logger.Sync()

	// Start the transports
	errCh := make(chan error, len(transports))
	for _, transport := range transports {
		go func(t ports.Transport) {
			errCh <- t.Start()
		}(transport)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutting down...", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Transport failed", zap.Error(err))
		}
	}

	// Stop the transports
	for _, transport := range transports {
		if err := transport.Stop(); err != nil {
			logger.Error("Failed to stop transport", zap.Error(err))
		}
	}

	// Stop the result store if needed
	if stopper, ok := store.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	// Release the URL verdict cache if needed
	if stopper, ok := urlChecker.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
