package history

import "time"

// rollingWindow is the number of days in the smoothing window.
const rollingWindow = 7

// Analyze fills in the derived per-day columns of a normalized series:
// day-over-day deltas, the shifted centered rolling average of free
// capacity, and weekend classification. The input entries are not
// modified; a new series is returned.
func Analyze(as AnalyzedSeries) AnalyzedSeries {
	out := AnalyzedSeries{
		Filesystem: as.Filesystem,
		Entries:    make([]Entry, len(as.Entries)),
	}
	copy(out.Entries, as.Entries)

	analyzeDeltas(out.Entries)
	analyzeRolling(out.Entries)

	for i := range out.Entries {
		wd := out.Entries[i].Date.Weekday()
		out.Entries[i].Weekend = wd == time.Saturday || wd == time.Sunday
	}

	return out
}

// analyzeDeltas recomputes used-capacity deltas over the gap-aware
// sequence. A gap day has no delta. The first recorded day has delta zero
// since there is no prior baseline; every later recorded day is compared
// against the previous recorded (non-gap) day.
func analyzeDeltas(entries []Entry) {
	prev := -1
	for i := range entries {
		if entries[i].Gap {
			continue
		}
		if prev < 0 {
			entries[i].Sample.DeltaGiB = 0
		} else {
			entries[i].Sample.DeltaGiB = entries[i].Sample.UsedGiB - entries[prev].Sample.UsedGiB
		}
		prev = i
	}
}

// analyzeRolling publishes at index i the mean free capacity of entries
// i..i+6, which is the centered 7-day average shifted 3 positions
// earlier. Windows that run off the end of the series or overlap a gap
// publish nothing; no partial or zero-padded average is ever produced.
func analyzeRolling(entries []Entry) {
	for i := 0; i+rollingWindow <= len(entries); i++ {
		var sum int64
		complete := true
		for j := i; j < i+rollingWindow; j++ {
			if entries[j].Gap {
				complete = false
				break
			}
			sum += entries[j].Sample.FreeGiB
		}
		if !complete {
			continue
		}
		entries[i].RollingAvg = float64(sum) / rollingWindow
		entries[i].HasRollingAvg = true
	}
}
