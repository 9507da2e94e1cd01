// Package metrics registers the prometheus counters and histogram the
// fetch orchestrator emits once per cycle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the registered collectors. Construct one per process
// with New and pass it to the scheduler.
type Metrics struct {
	CyclesTotal         *prometheus.CounterVec
	CyclesSkippedTotal  prometheus.Counter
	IngestErrorsTotal   *prometheus.CounterVec
	PublishErrorsTotal  prometheus.Counter
	ConsensusConfidence *prometheus.HistogramVec
	CycleDuration       prometheus.Histogram
}

// New registers every collector against reg and returns the handle.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oraclefeed_cycles_total",
			Help: "Fetch cycles completed, by outcome (ok, failed).",
		}, []string{"outcome"}),
		CyclesSkippedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "oraclefeed_cycles_skipped_total",
			Help: "Fetch cycles skipped because a previous cycle was still in flight.",
		}),
		IngestErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oraclefeed_ingest_errors_total",
			Help: "Ingestor fetch errors after exhausting retry, by source.",
		}, []string{"source"}),
		PublishErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "oraclefeed_publish_errors_total",
			Help: "Publisher errors after a consensus price was computed.",
		}),
		ConsensusConfidence: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "oraclefeed_consensus_confidence",
			Help:    "Confidence score of each emitted consensus price, by symbol.",
			Buckets: []float64{20, 40, 60, 70, 80, 90, 95, 100},
		}, []string{"symbol"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oraclefeed_cycle_duration_seconds",
			Help:    "Wall-clock duration of a fetch cycle.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
