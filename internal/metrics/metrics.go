// Package metrics exports per-filesystem capacity and growth figures for
// Prometheus scraping when fsgrowth runs as a daemon.
package metrics

import (
	"math"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dhenden/fsgrowth/internal/engine"
)

// Metrics holds the Prometheus instruments updated after each run.
type Metrics struct {
	totalGiB          *prometheus.GaugeVec
	usedGiB           *prometheus.GaugeVec
	freeGiB           *prometheus.GaugeVec
	usedPct           *prometheus.GaugeVec
	meanDelta         *prometheus.GaugeVec
	meanPositiveDelta *prometheus.GaugeVec
	daysToExhaustion  *prometheus.GaugeVec
	missingDays       *prometheus.GaugeVec
	runsTotal         *prometheus.CounterVec
}

// New creates and registers the instruments on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		totalGiB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_total_gib",
			Help: "Total capacity of the filesystem in GiB.",
		}, []string{"filesystem"}),
		usedGiB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_used_gib",
			Help: "Used capacity of the filesystem in GiB.",
		}, []string{"filesystem"}),
		freeGiB: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_free_gib",
			Help: "Free capacity of the filesystem in GiB.",
		}, []string{"filesystem"}),
		usedPct: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_used_percent",
			Help: "Used capacity of the filesystem as a percentage.",
		}, []string{"filesystem"}),
		meanDelta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_mean_daily_growth_gib",
			Help: "Mean day-over-day growth of used capacity in the report window, GiB.",
		}, []string{"filesystem"}),
		meanPositiveDelta: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_mean_positive_growth_gib",
			Help: "Mean non-negative day-over-day growth in the report window, GiB.",
		}, []string{"filesystem"}),
		daysToExhaustion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_days_to_exhaustion",
			Help: "Estimated days until free capacity reaches zero; +Inf when there is no sustained growth.",
		}, []string{"filesystem"}),
		missingDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fsgrowth_missing_days",
			Help: "Calendar days inside the recorded range with no sample.",
		}, []string{"filesystem"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsgrowth_runs_total",
			Help: "Report runs by outcome.",
		}, []string{"filesystem", "status"}),
	}

	reg.MustRegister(
		m.totalGiB, m.usedGiB, m.freeGiB, m.usedPct,
		m.meanDelta, m.meanPositiveDelta, m.daysToExhaustion,
		m.missingDays, m.runsTotal,
	)
	return m
}

// ObserveReport publishes the latest capacity figures and growth
// statistics from a completed run.
func (m *Metrics) ObserveReport(r *engine.Report) {
	labels := prometheus.Labels{"filesystem": r.Filesystem}

	// Entries are most recent first; publish the newest real sample.
	for _, e := range r.Entries {
		if e.Gap {
			continue
		}
		m.totalGiB.With(labels).Set(float64(e.Sample.TotalGiB))
		m.usedGiB.With(labels).Set(float64(e.Sample.UsedGiB))
		m.freeGiB.With(labels).Set(float64(e.Sample.FreeGiB))
		m.usedPct.With(labels).Set(float64(e.Sample.UsedPct))
		break
	}

	m.meanDelta.With(labels).Set(r.Stats.MeanDelta)
	if r.Stats.HasPositiveDelta {
		m.meanPositiveDelta.With(labels).Set(r.Stats.MeanPositiveDelta)
	}
	if r.Stats.Exhausts {
		m.daysToExhaustion.With(labels).Set(float64(r.Stats.DaysToExhaustion))
	} else {
		m.daysToExhaustion.With(labels).Set(math.Inf(1))
	}
	m.missingDays.With(labels).Set(float64(len(r.GapDates)))
	m.runsTotal.With(prometheus.Labels{"filesystem": r.Filesystem, "status": "completed"}).Inc()
}

// ObserveFailure counts a failed run.
func (m *Metrics) ObserveFailure(filesystem string) {
	m.runsTotal.With(prometheus.Labels{"filesystem": filesystem, "status": "failed"}).Inc()
}
