package history

import "time"

// Entry is one calendar day in an analyzed series: either a recorded
// sample or a synthesized gap marker. Numeric fields of a gap entry are
// meaningless and must be excluded from every aggregation.
type Entry struct {
	Date    time.Time
	Gap     bool
	Sample  Sample
	Weekend bool

	// RollingAvg is the centered 7-day mean of free capacity, present
	// only where the full window exists. See Analyze.
	RollingAvg    float64
	HasRollingAvg bool
}

// AnalyzedSeries is a gap-normalized, per-day view of a Series.
type AnalyzedSeries struct {
	Filesystem string
	Entries    []Entry
}

// Normalize reindexes a series to a strict daily cadence: exactly one
// entry per calendar day between the first and last recorded dates,
// inclusive. Days with no recorded sample become gap entries. The second
// return value lists the missing dates so callers can warn about each.
//
// A single-sample series normalizes to itself.
func Normalize(s Series) (AnalyzedSeries, []time.Time) {
	out := AnalyzedSeries{Filesystem: s.Filesystem}
	if len(s.Samples) == 0 {
		return out, nil
	}

	var missing []time.Time
	next := 0
	first := s.Samples[0].Date
	last := s.Samples[len(s.Samples)-1].Date

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if next < len(s.Samples) && s.Samples[next].Date.Equal(day) {
			out.Entries = append(out.Entries, Entry{
				Date:   day,
				Sample: s.Samples[next],
			})
			next++
			continue
		}
		out.Entries = append(out.Entries, Entry{Date: day, Gap: true})
		missing = append(missing, day)
	}

	return out, missing
}
