// Package report renders engine output for delivery. It owns only the
// thin presentation layer; all statistics arrive precomputed.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dhenden/fsgrowth/internal/engine"
)

// WriteText prints the windowed history and growth summary as an aligned
// text table, most recent day first.
func WriteText(w io.Writer, r *engine.Report) error {
	fmt.Fprintf(w, "Filesystem growth report for %s\n\n", r.Filesystem)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTOTAL\tUSED\tFREE\tPCT\tDELTA\tAVG(7D)\t")
	fmt.Fprintln(tw, "----\t-----\t----\t----\t---\t-----\t-------\t")

	for _, e := range r.Entries {
		day := e.Date.Format("2006-01-02")
		if e.Gap {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\tmissing\n", day)
			continue
		}

		avg := "-"
		if e.HasRollingAvg {
			avg = fmt.Sprintf("%.1f", e.RollingAvg)
		}
		note := ""
		if e.Weekend {
			note = "weekend"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d%%\t%+d\t%s\t%s\n",
			day,
			e.Sample.TotalGiB,
			e.Sample.UsedGiB,
			e.Sample.FreeGiB,
			e.Sample.UsedPct,
			e.Sample.DeltaGiB,
			avg,
			note,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nMean daily growth: %.2f GiB\n", r.Stats.MeanDelta)
	if r.Stats.HasPositiveDelta {
		fmt.Fprintf(w, "Mean positive growth: %.2f GiB\n", r.Stats.MeanPositiveDelta)
	} else {
		fmt.Fprintln(w, "Mean positive growth: n/a (no growing days in window)")
	}
	if r.Stats.Exhausts {
		fmt.Fprintf(w, "Estimated days to exhaustion: %d\n", r.Stats.DaysToExhaustion)
	} else {
		fmt.Fprintln(w, "Estimated days to exhaustion: never at current trend")
	}
	if len(r.GapDates) > 0 {
		fmt.Fprintf(w, "Warning: %d day(s) missing from history\n", len(r.GapDates))
	}
	return nil
}

type jsonEntry struct {
	Date       string   `json:"date"`
	Gap        bool     `json:"gap,omitempty"`
	TotalGiB   *int64   `json:"total_gib,omitempty"`
	UsedGiB    *int64   `json:"used_gib,omitempty"`
	FreeGiB    *int64   `json:"free_gib,omitempty"`
	UsedPct    *int     `json:"used_pct,omitempty"`
	DeltaGiB   *int64   `json:"delta_gib,omitempty"`
	RollingAvg *float64 `json:"rolling_avg_gib,omitempty"`
	Weekend    bool     `json:"weekend,omitempty"`
}

type jsonReport struct {
	Filesystem        string      `json:"filesystem"`
	GeneratedAt       string      `json:"generated_at"`
	Collected         bool        `json:"collected"`
	Entries           []jsonEntry `json:"entries"`
	MeanDelta         float64     `json:"mean_delta_gib"`
	MeanPositiveDelta *float64    `json:"mean_positive_delta_gib,omitempty"`
	DaysToExhaustion  *int64      `json:"days_to_exhaustion,omitempty"`
	MissingDays       []string    `json:"missing_days,omitempty"`
}

// WriteJSON emits the report as JSON for external renderers and mailers.
// Absent values (gap columns, undefined projection) are omitted rather
// than zeroed.
func WriteJSON(w io.Writer, r *engine.Report) error {
	out := jsonReport{
		Filesystem:  r.Filesystem,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Collected:   r.Collected,
		MeanDelta:   r.Stats.MeanDelta,
		Entries:     make([]jsonEntry, 0, len(r.Entries)),
	}

	for _, e := range r.Entries {
		je := jsonEntry{
			Date:    e.Date.Format("2006-01-02"),
			Gap:     e.Gap,
			Weekend: e.Weekend,
		}
		if !e.Gap {
			s := e.Sample
			je.TotalGiB = &s.TotalGiB
			je.UsedGiB = &s.UsedGiB
			je.FreeGiB = &s.FreeGiB
			je.UsedPct = &s.UsedPct
			je.DeltaGiB = &s.DeltaGiB
		}
		if e.HasRollingAvg {
			avg := e.RollingAvg
			je.RollingAvg = &avg
		}
		out.Entries = append(out.Entries, je)
	}

	if r.Stats.HasPositiveDelta {
		mpd := r.Stats.MeanPositiveDelta
		out.MeanPositiveDelta = &mpd
	}
	if r.Stats.Exhausts {
		days := r.Stats.DaysToExhaustion
		out.DaysToExhaustion = &days
	}
	for _, day := range r.GapDates {
		out.MissingDays = append(out.MissingDays, day.Format("2006-01-02"))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
