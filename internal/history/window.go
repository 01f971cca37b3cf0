package history

import "time"

// Window returns a copy of the series truncated to the trailing window:
// entries whose date is on or after today minus windowDays, in their
// original order. The input is never mutated, so windowing after
// persistence cannot affect stored history or already-computed deltas.
// A non-positive windowDays returns the whole series.
func Window(as AnalyzedSeries, windowDays int, today time.Time) AnalyzedSeries {
	out := AnalyzedSeries{Filesystem: as.Filesystem}
	if windowDays <= 0 {
		out.Entries = append(out.Entries, as.Entries...)
		return out
	}

	cutoff := Day(today).AddDate(0, 0, -windowDays)
	for _, e := range as.Entries {
		if !e.Date.Before(cutoff) {
			out.Entries = append(out.Entries, e)
		}
	}
	return out
}

// Reverse returns a copy of the series with entries in reverse order,
// for most-recent-first presentation.
func Reverse(as AnalyzedSeries) AnalyzedSeries {
	out := AnalyzedSeries{
		Filesystem: as.Filesystem,
		Entries:    make([]Entry, len(as.Entries)),
	}
	for i, e := range as.Entries {
		out.Entries[len(as.Entries)-1-i] = e
	}
	return out
}
