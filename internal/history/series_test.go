package history

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleOn(date time.Time, used int64) Sample {
	return Sample{
		Date:       date,
		Filesystem: "/data",
		TotalGiB:   1000,
		UsedGiB:    used,
		FreeGiB:    1000 - used,
		UsedPct:    int(used / 10),
	}
}

func TestMergeComputesDelta(t *testing.T) {
	s := NewSeries("/data")

	s.Merge(sampleOn(day(2026, 8, 1), 100))
	s.Merge(sampleOn(day(2026, 8, 2), 130))

	if got := s.Samples[0].DeltaGiB; got != 0 {
		t.Errorf("first sample delta = %d, want 0", got)
	}
	if got := s.Samples[1].DeltaGiB; got != 30 {
		t.Errorf("second sample delta = %d, want 30", got)
	}
}

func TestMergeSameDayReplaces(t *testing.T) {
	s := NewSeries("/data")

	s.Merge(sampleOn(day(2026, 8, 1), 100))
	s.Merge(sampleOn(day(2026, 8, 2), 120))
	s.Merge(sampleOn(day(2026, 8, 2), 150))

	if s.Len() != 2 {
		t.Fatalf("series has %d samples, want 2", s.Len())
	}
	if got := s.Samples[1].UsedGiB; got != 150 {
		t.Errorf("replaced sample used = %d, want 150 (last write wins)", got)
	}
	if got := s.Samples[1].DeltaGiB; got != 50 {
		t.Errorf("replaced sample delta = %d, want 50 (recomputed)", got)
	}
}

func TestMergeKeepsSortOrder(t *testing.T) {
	s := NewSeries("/data")

	// Out-of-order arrival, e.g. a backfilled day
	s.Merge(sampleOn(day(2026, 8, 3), 120))
	s.Merge(sampleOn(day(2026, 8, 1), 100))
	s.Merge(sampleOn(day(2026, 8, 2), 110))

	for i := 1; i < s.Len(); i++ {
		if !s.Samples[i-1].Date.Before(s.Samples[i].Date) {
			t.Fatalf("samples not strictly ascending at %d: %v >= %v",
				i, s.Samples[i-1].Date, s.Samples[i].Date)
		}
	}
	if got := s.Samples[1].DeltaGiB; got != 10 {
		t.Errorf("backfilled middle delta = %d, want 10", got)
	}
}

func TestMergeDeltaSkipsMissingDays(t *testing.T) {
	s := NewSeries("/data")

	s.Merge(sampleOn(day(2026, 8, 1), 100))
	// Two-day gap; delta still compares against the previous entry.
	s.Merge(sampleOn(day(2026, 8, 4), 160))

	if got := s.Samples[1].DeltaGiB; got != 60 {
		t.Errorf("delta across gap = %d, want 60", got)
	}
}

func TestBefore(t *testing.T) {
	s := NewSeries("/data")
	s.Merge(sampleOn(day(2026, 8, 1), 100))
	s.Merge(sampleOn(day(2026, 8, 3), 120))

	if _, ok := s.Before(day(2026, 8, 1)); ok {
		t.Error("Before(first day) should report no previous sample")
	}
	prev, ok := s.Before(day(2026, 8, 3))
	if !ok || !prev.Date.Equal(day(2026, 8, 1)) {
		t.Errorf("Before(aug 3) = %v, %v; want aug 1 sample", prev.Date, ok)
	}
}

func TestLatest(t *testing.T) {
	s := NewSeries("/data")
	if _, ok := s.Latest(); ok {
		t.Error("empty series should have no latest sample")
	}

	s.Merge(sampleOn(day(2026, 8, 1), 100))
	s.Merge(sampleOn(day(2026, 8, 2), 110))
	latest, ok := s.Latest()
	if !ok || !latest.Date.Equal(day(2026, 8, 2)) {
		t.Errorf("Latest() = %v, %v; want aug 2", latest.Date, ok)
	}
}
