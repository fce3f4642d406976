package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"awqat-hq/gateway/pkg/cli"
	"awqat-hq/gateway/pkg/config"
	"awqat-hq/gateway/pkg/telemetry/logging"
	"awqat-hq/gateway/pkg/telemetry/tracing"
)

var runFlags struct {
	port     int
	logLevel string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway",
	Long: `Start the gateway with the specified configuration.

The server listens on the configured port and serves the /api/awqat routes,
the root liveness route, /ready and the metrics endpoint. When a config file
is given it is watched and cache TTL changes apply without a restart.

Examples:
  # Start with environment configuration
  awqat-gateway run

  # Start with a config file
  awqat-gateway run --config /etc/awqat/gateway.yaml

  # Override port and log level
  awqat-gateway run --port 8080 --log-level debug`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVarP(&runFlags.port, "port", "p", 0, "override listen port")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

// loadRunConfig loads configuration and applies flag overrides.
func loadRunConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, cli.WrapConfigError(err)
	}

	if runFlags.port != 0 {
		cfg.Server.Port = runFlags.port
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if runFlags.port != 0 || runFlags.logLevel != "" {
		if err := config.Validate(cfg); err != nil {
			return nil, cli.WrapConfigError(err)
		}
	}

	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig()
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.FromConfig(cfg.Telemetry.Logging))
	if err != nil {
		return cli.WrapConfigError(err)
	}
	slog.SetDefault(logger)

	ctx, cancel := cli.SetupSignalHandler(logger)
	defer cancel()

	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	gw, err := newGateway(cfg, logger)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		if err := gw.close(); err != nil {
			logger.Warn("cache store close failed", "error", err)
		}
	}()

	logger.Info("starting awqat gateway",
		"version", Version,
		"config", cfgFile,
		"listen", cfg.Server.ListenAddress(),
		"upstream", cfg.Upstream.BaseURL,
		"cache_backend", cfg.Cache.Backend,
		"metrics", cfg.Telemetry.Metrics.IsEnabled(),
		"tracing", tracer.Enabled(),
	)

	if cfgFile != "" {
		watcher, err := config.NewWatcher(cfgFile, logger)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		go func() {
			if err := watcher.Watch(ctx, gw.applyConfig); err != nil {
				logger.Error("config watcher stopped", "error", err)
			}
		}()
	}

	if err := gw.serve(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}
