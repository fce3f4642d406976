package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SetupSignalHandler returns a context that is cancelled on the first SIGINT
// or SIGTERM. A second signal exits immediately.
func SetupSignalHandler(logger *slog.Logger) (context.Context, context.CancelFunc) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := WaitForShutdown()

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received shutdown signal", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			signal.Stop(sigChan)
			return
		}

		sig := <-sigChan
		logger.Warn("received second signal, exiting", "signal", sig.String())
		os.Exit(ExitFailure)
	}()

	return ctx, cancel
}

// WaitForShutdown returns a channel that receives SIGINT and SIGTERM. Pass
// it to signal.Stop to unregister.
func WaitForShutdown() chan os.Signal {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	return sigChan
}
