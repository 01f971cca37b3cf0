package history

import (
	"math"
	"time"
)

// GiB is the number of bytes in one gibibyte.
const GiB = 1 << 30

// Sample is one day's disk usage observation for one filesystem.
// Capacity fields are whole gibibytes rounded from raw byte counts.
type Sample struct {
	Date       time.Time
	Filesystem string
	TotalGiB   int64
	UsedGiB    int64
	FreeGiB    int64
	UsedPct    int
	DeltaGiB   int64
}

// NewSample builds a Sample from raw byte counts, rounding to whole GiB.
// The observation time is truncated to midnight UTC of its calendar day.
// DeltaGiB is left at zero; Series.Merge fills it in against the history.
func NewSample(filesystem string, at time.Time, totalBytes, usedBytes, freeBytes uint64) Sample {
	total := roundGiB(totalBytes)
	used := roundGiB(usedBytes)
	free := roundGiB(freeBytes)

	// Percentage is computed over the reduced GiB values. Guard the
	// empty-filesystem case so pct never divides by zero.
	pct := 0
	if total > 0 {
		pct = int(math.Round(float64(used) / float64(total) * 100))
	}

	return Sample{
		Date:       Day(at),
		Filesystem: filesystem,
		TotalGiB:   total,
		UsedGiB:    used,
		FreeGiB:    free,
		UsedPct:    pct,
	}
}

// Day truncates a timestamp to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func roundGiB(bytes uint64) int64 {
	return int64(math.Round(float64(bytes) / GiB))
}
