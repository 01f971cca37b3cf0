package history

import "math"

// GrowthStats are the derived growth statistics for a (usually windowed)
// analyzed series. They are recomputed every run and never persisted.
type GrowthStats struct {
	// MeanDelta is the arithmetic mean of all recorded deltas.
	MeanDelta float64

	// MeanPositiveDelta is the arithmetic mean of recorded deltas >= 0.
	// It is only meaningful when HasPositiveDelta is true.
	MeanPositiveDelta float64
	HasPositiveDelta  bool

	// DaysToExhaustion estimates the days until free capacity reaches
	// zero at the current positive growth rate. When Exhausts is false
	// the estimate is infinite: there is no sustained positive growth.
	DaysToExhaustion int64
	Exhausts         bool
}

// Project reduces an analyzed series to growth statistics. Gap entries
// are excluded from every mean. Callers that want the stats to track
// recent trend rather than lifetime history should window the series
// first.
func Project(as AnalyzedSeries) GrowthStats {
	var stats GrowthStats

	var sum, posSum float64
	var n, posN int
	latestFree := int64(0)
	haveLatest := false

	for _, e := range as.Entries {
		if e.Gap {
			continue
		}
		d := float64(e.Sample.DeltaGiB)
		sum += d
		n++
		if d >= 0 {
			posSum += d
			posN++
		}
		// Entries are date-ascending, so the last non-gap wins.
		latestFree = e.Sample.FreeGiB
		haveLatest = true
	}

	if n > 0 {
		stats.MeanDelta = sum / float64(n)
	}
	if posN > 0 {
		stats.MeanPositiveDelta = posSum / float64(posN)
		stats.HasPositiveDelta = true
	}

	if !stats.HasPositiveDelta || stats.MeanPositiveDelta <= 0 || !haveLatest {
		return stats
	}

	stats.DaysToExhaustion = int64(math.Floor(float64(latestFree) / stats.MeanPositiveDelta))
	stats.Exhausts = true
	return stats
}
