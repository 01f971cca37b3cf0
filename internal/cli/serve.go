package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhenden/fsgrowth/internal/collector"
	"github.com/dhenden/fsgrowth/internal/config"
	"github.com/dhenden/fsgrowth/internal/daemon"
	"github.com/dhenden/fsgrowth/internal/engine"
	"github.com/dhenden/fsgrowth/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the sampling daemon",
	Long:  `Start the fsgrowth daemon. This is typically invoked by systemd.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Override log level from flag if specified
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("starting fsgrowth daemon",
		"config", cfgFile,
		"history", cfg.History.Path,
		"filesystems", len(cfg.Filesystems),
		"interval", cfg.Daemon.Interval,
	)

	// Initialize storage
	st, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	// Create daemon
	eng := engine.New(st, collector.New(), logger)
	d := daemon.New(cfg, eng, logger)

	// Setup signal handling
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", "signal", sig)
		cancel()
	}()

	// Run daemon
	if err := d.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("daemon error: %w", err)
	}

	logger.Info("daemon stopped")
	return nil
}
