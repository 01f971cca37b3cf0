package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dhenden/fsgrowth/internal/collector"
	"github.com/dhenden/fsgrowth/internal/history"
	"github.com/dhenden/fsgrowth/internal/store"
)

// fakeStore keeps series in memory and can be primed to fail.
type fakeStore struct {
	series   map[string]history.Series
	saved    map[string]history.Series
	loadErr  error
	saveErr  error
	runs     []string
	statuses map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		series:   make(map[string]history.Series),
		saved:    make(map[string]history.Series),
		statuses: make(map[string]string),
	}
}

func (f *fakeStore) Initialize(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                         { return nil }

func (f *fakeStore) LoadSeries(ctx context.Context, filesystem string) (history.Series, error) {
	if f.loadErr != nil {
		return history.NewSeries(filesystem), f.loadErr
	}
	if s, ok := f.series[filesystem]; ok {
		return s, nil
	}
	return history.NewSeries(filesystem), nil
}

func (f *fakeStore) SaveSeries(ctx context.Context, s history.Series) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved[s.Filesystem] = s
	return nil
}

func (f *fakeStore) StartRun(ctx context.Context, filesystem string) (string, error) {
	id := filesystem + "#run"
	f.runs = append(f.runs, id)
	f.statuses[id] = "running"
	return id, nil
}

func (f *fakeStore) CompleteRun(ctx context.Context, runID string, samples int) error {
	f.statuses[runID] = "completed"
	return nil
}

func (f *fakeStore) FailRun(ctx context.Context, runID string, reason string) error {
	f.statuses[runID] = "failed"
	return nil
}

// fakeCollector returns fixed usage or an error.
type fakeCollector struct {
	usage collector.Usage
	err   error
	calls int
}

func (f *fakeCollector) Name() string { return "fake" }

func (f *fakeCollector) Usage(ctx context.Context, path string) (collector.Usage, error) {
	f.calls++
	if f.err != nil {
		return collector.Usage{}, f.err
	}
	return f.usage, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func primedStore(filesystem string, days int, usedStart int64) *fakeStore {
	fs := newFakeStore()
	s := history.NewSeries(filesystem)
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < days; i++ {
		used := usedStart + int64(i)*10
		s.Merge(history.Sample{
			Date:       base.AddDate(0, 0, i),
			Filesystem: filesystem,
			TotalGiB:   1000,
			UsedGiB:    used,
			FreeGiB:    1000 - used,
			UsedPct:    int(used / 10),
		})
	}
	fs.series[filesystem] = s
	return fs
}

func TestRunCollectsAndReports(t *testing.T) {
	fs := primedStore("/data", 9, 100)
	col := &fakeCollector{usage: collector.Usage{
		TotalBytes: 1000 * history.GiB,
		UsedBytes:  200 * history.GiB,
		FreeBytes:  800 * history.GiB,
	}}
	eng := New(fs, col, quietLogger())

	now := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	rep, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    true,
		Now:        now,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if col.calls != 1 {
		t.Errorf("collector called %d times, want 1", col.calls)
	}
	if !rep.Collected {
		t.Error("report not marked collected")
	}
	if rep.Persisted != 10 {
		t.Errorf("persisted %d samples, want 10", rep.Persisted)
	}

	// Entries come most recent first; the head is today's sample.
	if len(rep.Entries) == 0 {
		t.Fatal("report has no entries")
	}
	head := rep.Entries[0]
	if head.Gap || head.Sample.UsedGiB != 200 {
		t.Errorf("head entry = %+v, want today's 200 GiB sample", head)
	}
	// Yesterday was 180 used, so today's delta is 20.
	if head.Sample.DeltaGiB != 20 {
		t.Errorf("today's delta = %d, want 20", head.Sample.DeltaGiB)
	}

	saved, ok := fs.saved["/data"]
	if !ok {
		t.Fatal("series was not persisted")
	}
	if saved.Len() != 10 {
		t.Errorf("saved %d samples, want 10", saved.Len())
	}
	if fs.statuses["/data#run"] != "completed" {
		t.Errorf("run status = %q, want completed", fs.statuses["/data#run"])
	}

	if !rep.Stats.HasPositiveDelta || !rep.Stats.Exhausts {
		t.Fatalf("stats = %+v, want finite projection for steady growth", rep.Stats)
	}
}

func TestRunHistoryOnly(t *testing.T) {
	fs := primedStore("/data", 5, 100)
	col := &fakeCollector{err: errors.New("should not be called")}
	eng := New(fs, col, quietLogger())

	rep, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    false,
		Now:        time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if col.calls != 0 {
		t.Errorf("collector called %d times in history-only run", col.calls)
	}
	if rep.Collected {
		t.Error("history-only report marked collected")
	}
	if rep.Persisted != 5 {
		t.Errorf("persisted %d samples, want 5", rep.Persisted)
	}
}

func TestRunFirstEver(t *testing.T) {
	fs := newFakeStore()
	col := &fakeCollector{usage: collector.Usage{
		TotalBytes: 100 * history.GiB,
		UsedBytes:  40 * history.GiB,
		FreeBytes:  60 * history.GiB,
	}}
	eng := New(fs, col, quietLogger())

	rep, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    true,
	})
	if err != nil {
		t.Fatalf("Run on empty history: %v", err)
	}
	if len(rep.Entries) != 1 {
		t.Fatalf("first run produced %d entries, want 1", len(rep.Entries))
	}
	if rep.Entries[0].Sample.DeltaGiB != 0 {
		t.Errorf("first-ever delta = %d, want 0", rep.Entries[0].Sample.DeltaGiB)
	}
	if len(rep.GapDates) != 0 {
		t.Errorf("first run reported gaps: %v", rep.GapDates)
	}
}

func TestRunReportsGaps(t *testing.T) {
	fs := newFakeStore()
	s := history.NewSeries("/data")
	s.Merge(history.Sample{Date: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), Filesystem: "/data", TotalGiB: 100, UsedGiB: 10, FreeGiB: 90, UsedPct: 10})
	s.Merge(history.Sample{Date: time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC), Filesystem: "/data", TotalGiB: 100, UsedGiB: 13, FreeGiB: 87, UsedPct: 13})
	fs.series["/data"] = s

	eng := New(fs, &fakeCollector{}, quietLogger())
	rep, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    false,
		Now:        time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rep.GapDates) != 2 {
		t.Fatalf("reported %d gaps, want 2 (aug 2, aug 3)", len(rep.GapDates))
	}
	// Gap days appear in the windowed output as explicit markers.
	gaps := 0
	for _, e := range rep.Entries {
		if e.Gap {
			gaps++
		}
	}
	if gaps != 2 {
		t.Errorf("windowed entries contain %d gap markers, want 2", gaps)
	}
}

func TestRunCollectionFailureAborts(t *testing.T) {
	fs := primedStore("/data", 3, 100)
	colErr := &collector.CollectionError{Path: "/data", Err: errors.New("permission denied")}
	eng := New(fs, &fakeCollector{err: colErr}, quietLogger())

	_, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    true,
	})

	var want *collector.CollectionError
	if !errors.As(err, &want) {
		t.Fatalf("Run error = %v, want *CollectionError", err)
	}
	if len(fs.saved) != 0 {
		t.Error("history persisted despite collection failure")
	}
	if fs.statuses["/data#run"] != "failed" {
		t.Errorf("run status = %q, want failed", fs.statuses["/data#run"])
	}
}

func TestRunWriteFailureAborts(t *testing.T) {
	fs := primedStore("/data", 3, 100)
	fs.saveErr = &store.WriteError{Err: errors.New("disk full")}
	eng := New(fs, &fakeCollector{}, quietLogger())

	_, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    false,
	})

	var want *store.WriteError
	if !errors.As(err, &want) {
		t.Fatalf("Run error = %v, want *WriteError", err)
	}
}

func TestRunCorruptHistoryAbortsBeforeWrite(t *testing.T) {
	fs := newFakeStore()
	fs.loadErr = &store.CorruptHistoryError{Filesystem: "/data", Detail: "bad row"}
	eng := New(fs, &fakeCollector{}, quietLogger())

	_, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    true,
	})

	var want *store.CorruptHistoryError
	if !errors.As(err, &want) {
		t.Fatalf("Run error = %v, want *CorruptHistoryError", err)
	}
	if len(fs.saved) != 0 {
		t.Error("history persisted despite corrupt load")
	}
}

func TestRunPersistsDeltasFromAnalysis(t *testing.T) {
	// A stale delta in the stored history gets recomputed before persist.
	fs := primedStore("/data", 2, 100)
	s := fs.series["/data"]
	s.Samples[1].DeltaGiB = 999
	fs.series["/data"] = s

	eng := New(fs, &fakeCollector{}, quietLogger())
	_, err := eng.Run(context.Background(), Options{
		Filesystem: "/data",
		WindowDays: 30,
		Collect:    false,
		Now:        time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	saved := fs.saved["/data"]
	if saved.Samples[1].DeltaGiB != 10 {
		t.Errorf("persisted delta = %d, want recomputed 10", saved.Samples[1].DeltaGiB)
	}
}
