// Package engine drives one report cycle for one filesystem:
// load history, collect a fresh sample, merge, normalize, analyze,
// persist, then window and project for presentation.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/dhenden/fsgrowth/internal/collector"
	"github.com/dhenden/fsgrowth/internal/history"
	"github.com/dhenden/fsgrowth/internal/store"
)

// Options configures a single run. It is an explicit value so the engine
// never reads ambient process state.
type Options struct {
	// Filesystem is the mount path whose history is processed.
	Filesystem string

	// WindowDays is the trailing report window; statistics are computed
	// over this window, not the lifetime history. Non-positive means the
	// whole history.
	WindowDays int

	// Collect records a fresh sample before analysis. With Collect false
	// the run is history-only.
	Collect bool

	// Now anchors the report window. The zero value means time.Now().
	Now time.Time
}

// Report is the presentation-ready result of a run: the windowed series
// in most-recent-first order plus derived growth statistics. It is handed
// to an external renderer or mailer; nothing in it is persisted.
type Report struct {
	Filesystem string
	Collected  bool
	Entries    []history.Entry
	Stats      history.GrowthStats
	GapDates   []time.Time

	// Persisted is the number of samples written back to the store.
	Persisted int
}

// Engine wires the store and collector collaborators to the history
// pipeline.
type Engine struct {
	store     store.Store
	collector collector.Collector
	logger    *slog.Logger
}

// New creates an Engine. A nil logger falls back to slog.Default().
func New(st store.Store, col collector.Collector, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: st, collector: col, logger: logger}
}

// Run executes one report cycle. Corrupt history, collection failures
// (when Collect is set) and persistence failures abort the run with the
// corresponding typed error; gaps are logged and the run proceeds.
// Persistence happens before windowing, so the stored history is always
// the full, analyzed series.
func (e *Engine) Run(ctx context.Context, opts Options) (*Report, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	runID, err := e.store.StartRun(ctx, opts.Filesystem)
	if err != nil {
		// The audit trail is best-effort; the run itself proceeds.
		e.logger.Warn("failed to record run start", "filesystem", opts.Filesystem, "error", err)
	}

	report, err := e.run(ctx, opts, now)
	if runID != "" {
		if err != nil {
			if ferr := e.store.FailRun(ctx, runID, err.Error()); ferr != nil {
				e.logger.Warn("failed to record run failure", "run_id", runID, "error", ferr)
			}
		} else {
			if cerr := e.store.CompleteRun(ctx, runID, report.Persisted); cerr != nil {
				e.logger.Warn("failed to record run completion", "run_id", runID, "error", cerr)
			}
		}
	}
	return report, err
}

func (e *Engine) run(ctx context.Context, opts Options, now time.Time) (*Report, error) {
	series, err := e.store.LoadSeries(ctx, opts.Filesystem)
	if err != nil {
		return nil, err
	}
	if series.Len() == 0 {
		e.logger.Info("no history yet, starting fresh", "filesystem", opts.Filesystem)
	}

	collected := false
	if opts.Collect {
		usage, err := e.collector.Usage(ctx, opts.Filesystem)
		if err != nil {
			return nil, err
		}
		sample := history.NewSample(opts.Filesystem, now, usage.TotalBytes, usage.UsedBytes, usage.FreeBytes)
		series.Merge(sample)
		collected = true
		e.logger.Debug("collected sample",
			"filesystem", opts.Filesystem,
			"total_gib", sample.TotalGiB,
			"used_gib", sample.UsedGiB,
			"free_gib", sample.FreeGiB,
			"pct", sample.UsedPct,
		)
	}

	normalized, missing := history.Normalize(series)
	for _, day := range missing {
		e.logger.Warn("missing sample for day",
			"filesystem", opts.Filesystem,
			"day", day.Format("2006-01-02"),
		)
	}

	analyzed := history.Analyze(normalized)

	// Copy the analyzed deltas back into the series before persisting so
	// the stored history round-trips the derived column.
	persistable := series
	persistable.Samples = analyzedSamples(analyzed)
	if err := e.store.SaveSeries(ctx, persistable); err != nil {
		return nil, err
	}

	windowed := history.Window(analyzed, opts.WindowDays, now)
	stats := history.Project(windowed)
	presented := history.Reverse(windowed)

	return &Report{
		Filesystem: opts.Filesystem,
		Collected:  collected,
		Entries:    presented.Entries,
		Stats:      stats,
		GapDates:   missing,
		Persisted:  len(persistable.Samples),
	}, nil
}

// analyzedSamples extracts the recorded (non-gap) samples of an analyzed
// series, carrying the recomputed deltas.
func analyzedSamples(as history.AnalyzedSeries) []history.Sample {
	var samples []history.Sample
	for _, e := range as.Entries {
		if !e.Gap {
			samples = append(samples, e.Sample)
		}
	}
	return samples
}
