package history

import (
	"testing"
)

func TestWindowTruncates(t *testing.T) {
	free := []int64{700, 690, 680, 670, 660, 650, 640, 630, 620, 610}
	as := Analyze(denseSeries(t, free))

	// Aug 1..10 recorded; a 5-day window anchored at Aug 10 keeps Aug 5
	// and later.
	windowed := Window(as, 5, day(2026, 8, 10))

	if len(windowed.Entries) != 6 {
		t.Fatalf("windowed to %d entries, want 6", len(windowed.Entries))
	}
	if !windowed.Entries[0].Date.Equal(day(2026, 8, 5)) {
		t.Errorf("window starts at %v, want aug 5", windowed.Entries[0].Date)
	}
	if !windowed.Entries[5].Date.Equal(day(2026, 8, 10)) {
		t.Errorf("window ends at %v, want aug 10", windowed.Entries[5].Date)
	}
}

func TestWindowNonPositiveKeepsAll(t *testing.T) {
	free := []int64{700, 690, 680}
	as := Analyze(denseSeries(t, free))

	windowed := Window(as, 0, day(2026, 8, 3))
	if len(windowed.Entries) != 3 {
		t.Errorf("windowed to %d entries, want all 3", len(windowed.Entries))
	}
}

func TestWindowDoesNotMutate(t *testing.T) {
	free := []int64{700, 690, 680, 670, 660, 650, 640, 630}
	as := Analyze(denseSeries(t, free))

	before := make([]Entry, len(as.Entries))
	copy(before, as.Entries)

	windowed := Window(as, 3, day(2026, 8, 8))
	for i := range windowed.Entries {
		windowed.Entries[i].Sample.UsedGiB = -1
	}

	for i := range as.Entries {
		if as.Entries[i] != before[i] {
			t.Fatalf("entry %d mutated by windowing: %+v != %+v", i, as.Entries[i], before[i])
		}
	}
}

func TestWindowStatsMatchUnwindowedTail(t *testing.T) {
	// Statistics over the windowed entries must equal statistics computed
	// directly over the same trailing entries of the full series.
	free := []int64{700, 695, 685, 684, 670, 660, 659, 640, 630, 610}
	as := Analyze(denseSeries(t, free))

	windowed := Window(as, 4, day(2026, 8, 10))
	direct := AnalyzedSeries{
		Filesystem: as.Filesystem,
		Entries:    as.Entries[len(as.Entries)-5:],
	}

	if got, want := Project(windowed), Project(direct); got != want {
		t.Errorf("windowed stats %+v != direct tail stats %+v", got, want)
	}
}

func TestReverse(t *testing.T) {
	free := []int64{700, 690, 680}
	as := Analyze(denseSeries(t, free))

	rev := Reverse(as)

	if len(rev.Entries) != 3 {
		t.Fatalf("reversed to %d entries, want 3", len(rev.Entries))
	}
	if !rev.Entries[0].Date.Equal(day(2026, 8, 3)) {
		t.Errorf("first reversed entry = %v, want most recent day", rev.Entries[0].Date)
	}
	// Original order untouched
	if !as.Entries[0].Date.Equal(day(2026, 8, 1)) {
		t.Error("Reverse mutated its input")
	}
}
