package history

import (
	"sort"
	"time"
)

// Series is the ordered, date-keyed history of Samples for one filesystem.
// Samples are strictly ascending by Date with at most one entry per
// calendar day.
type Series struct {
	Filesystem string
	Samples    []Sample
}

// NewSeries returns an empty Series for the given filesystem.
func NewSeries(filesystem string) Series {
	return Series{Filesystem: filesystem}
}

// Len returns the number of recorded samples.
func (s Series) Len() int {
	return len(s.Samples)
}

// Latest returns the most recent sample, or false if the series is empty.
func (s Series) Latest() (Sample, bool) {
	if len(s.Samples) == 0 {
		return Sample{}, false
	}
	return s.Samples[len(s.Samples)-1], true
}

// Merge inserts a sample into the series, keeping it sorted by date.
// A sample landing on a day that already has an entry replaces that entry
// (last write wins). The sample's DeltaGiB is computed against the entry
// with the largest date strictly before it, or zero when no such entry
// exists.
func (s *Series) Merge(sample Sample) {
	sample.Date = Day(sample.Date)

	if prev, ok := s.Before(sample.Date); ok {
		sample.DeltaGiB = sample.UsedGiB - prev.UsedGiB
	} else {
		sample.DeltaGiB = 0
	}

	i := sort.Search(len(s.Samples), func(i int) bool {
		return !s.Samples[i].Date.Before(sample.Date)
	})

	if i < len(s.Samples) && s.Samples[i].Date.Equal(sample.Date) {
		s.Samples[i] = sample
		return
	}

	s.Samples = append(s.Samples, Sample{})
	copy(s.Samples[i+1:], s.Samples[i:])
	s.Samples[i] = sample
}

// Before returns the sample with the largest date strictly before day.
func (s Series) Before(day time.Time) (Sample, bool) {
	day = Day(day)
	i := sort.Search(len(s.Samples), func(i int) bool {
		return !s.Samples[i].Date.Before(day)
	})
	if i == 0 {
		return Sample{}, false
	}
	return s.Samples[i-1], true
}
