package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhenden/fsgrowth/internal/config"
	"github.com/dhenden/fsgrowth/internal/history"
	"github.com/dhenden/fsgrowth/internal/store"
)

var (
	queryDays   int
	queryFormat string
	queryLimit  int
)

var queryCmd = &cobra.Command{
	Use:   "query <filesystem>",
	Short: "Print stored history for a filesystem",
	Long: `Print the recorded samples for a filesystem, most recent first.
This reads the history as stored; it does not collect a new sample or
modify anything.

Examples:
  fsgrowth query /data/archive
  fsgrowth query /data/archive --days 7
  fsgrowth query /data/archive --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVar(&queryDays, "days", 0, "show samples from the last N days")
	queryCmd.Flags().StringVar(&queryFormat, "format", "text", "output format (text, json)")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "maximum number of samples to show")
}

func runQuery(cmd *cobra.Command, args []string) error {
	filesystem := args[0]

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	st, err := store.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing history: %w", err)
	}

	series, err := st.LoadSeries(ctx, filesystem)
	if err != nil {
		return err
	}

	samples := series.Samples
	if queryDays > 0 {
		cutoff := history.Day(time.Now()).AddDate(0, 0, -queryDays)
		kept := samples[:0:0]
		for _, s := range samples {
			if !s.Date.Before(cutoff) {
				kept = append(kept, s)
			}
		}
		samples = kept
	}

	// Most recent first
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	if queryLimit > 0 && len(samples) > queryLimit {
		samples = samples[:queryLimit]
	}

	if len(samples) == 0 {
		fmt.Println("No samples found")
		return nil
	}

	switch queryFormat {
	case "json":
		return querySamplesJSON(samples)
	default:
		return querySamplesText(samples)
	}
}

func querySamplesText(samples []history.Sample) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTOTAL\tUSED\tFREE\tPCT\tDELTA")
	fmt.Fprintln(w, "----\t-----\t----\t----\t---\t-----")

	for _, s := range samples {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d%%\t%+d\n",
			s.Date.Format("2006-01-02"),
			s.TotalGiB, s.UsedGiB, s.FreeGiB, s.UsedPct, s.DeltaGiB,
		)
	}
	return w.Flush()
}

type querySample struct {
	Date     string `json:"date"`
	TotalGiB int64  `json:"total_gib"`
	UsedGiB  int64  `json:"used_gib"`
	FreeGiB  int64  `json:"free_gib"`
	UsedPct  int    `json:"used_pct"`
	DeltaGiB int64  `json:"delta_gib"`
}

func querySamplesJSON(samples []history.Sample) error {
	out := make([]querySample, len(samples))
	for i, s := range samples {
		out[i] = querySample{
			Date:     s.Date.Format("2006-01-02"),
			TotalGiB: s.TotalGiB,
			UsedGiB:  s.UsedGiB,
			FreeGiB:  s.FreeGiB,
			UsedPct:  s.UsedPct,
			DeltaGiB: s.DeltaGiB,
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
