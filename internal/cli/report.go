package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhenden/fsgrowth/internal/collector"
	"github.com/dhenden/fsgrowth/internal/config"
	"github.com/dhenden/fsgrowth/internal/engine"
	"github.com/dhenden/fsgrowth/internal/report"
	"github.com/dhenden/fsgrowth/internal/store"
)

var (
	reportWindow    int
	reportNoCollect bool
	reportFormat    string
	reportQuiet     bool
	reportStrict    bool
)

var reportCmd = &cobra.Command{
	Use:   "report [filesystem...]",
	Short: "Sample filesystems and print a growth report",
	Long: `Record today's capacity sample for each filesystem, update the stored
history, and print the trailing-window growth report. Without arguments
the filesystems come from the config file.

Examples:
  fsgrowth report
  fsgrowth report /data/archive
  fsgrowth report --window 14 --format json
  fsgrowth report --no-collect`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().IntVar(&reportWindow, "window", 0, "report window in days (default from config)")
	reportCmd.Flags().BoolVar(&reportNoCollect, "no-collect", false, "skip sampling, report from stored history only")
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "output format (text, json)")
	reportCmd.Flags().BoolVar(&reportQuiet, "quiet", false, "suppress warnings, log errors only")
	reportCmd.Flags().BoolVar(&reportStrict, "strict-collect", false, "abort on the first collection failure instead of continuing")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	filesystems := args
	if len(filesystems) == 0 {
		filesystems = cfg.Filesystems
	}
	if len(filesystems) == 0 {
		return fmt.Errorf("no filesystems given; pass them as arguments or set them in the config file")
	}

	window := cfg.Report.WindowDays
	if reportWindow > 0 {
		window = reportWindow
	}
	format := cfg.Report.Format
	if reportFormat != "" {
		format = reportFormat
	}
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid --format value: must be \"text\" or \"json\"")
	}

	level := cfg.Logging.Level
	if cmd.Flags().Changed("log-level") {
		level = logLevel
	}
	if reportQuiet {
		level = "error"
	}
	logger := setupLogger(level, cfg.Logging.Format)

	st, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	eng := engine.New(st, collector.New(), logger)

	now := time.Now()
	var firstErr error
	for _, fs := range filesystems {
		rep, err := eng.Run(ctx, engine.Options{
			Filesystem: fs,
			WindowDays: window,
			Collect:    !reportNoCollect,
			Now:        now,
		})
		if err != nil {
			var collectErr *collector.CollectionError
			if errors.As(err, &collectErr) && !reportStrict && len(filesystems) > 1 {
				// One unreachable mount should not starve the others of
				// their report.
				logger.Error("skipping filesystem", "filesystem", fs, "error", err)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			return err
		}

		switch format {
		case "json":
			if err := report.WriteJSON(os.Stdout, rep); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		default:
			if err := report.WriteText(os.Stdout, rep); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
			fmt.Println()
		}
	}

	return firstErr
}
