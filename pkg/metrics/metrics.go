// Package metrics exports dereplication counters on a private Prometheus
// registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "ggderep"

// Run statuses used as the status label.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

type Metrics struct {
	Runs             *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	InputGenomes     prometheus.Gauge
	Clusters         prometheus.Gauge
	RedundantGenomes prometheus.Gauge
	SuppressedPairs  *prometheus.CounterVec
	Merges           prometheus.Counter

	registry *prometheus.Registry
}

// New builds the metrics and registers them, together with the Go runtime
// collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "runs",
				Name:      "total",
				Help:      "Dereplication runs by final status",
			},
			[]string{"status"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "runs",
				Name:      "duration_seconds",
				Help:      "Wall time of a dereplication run",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),
		InputGenomes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "last_run",
				Name:      "input_genomes",
				Help:      "Genomes given to the last successful run",
			},
		),
		Clusters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "last_run",
				Name:      "clusters",
				Help:      "Clusters left by the last successful run",
			},
		),
		RedundantGenomes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "last_run",
				Name:      "redundant_genomes",
				Help:      "Genomes that are not a representative in the last successful run",
			},
		),
		SuppressedPairs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "suppress",
				Name:      "pairs_total",
				Help:      "Ordered genome pairs handled by the weak hit rules",
			},
			[]string{"rule"},
		),
		Merges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cluster",
				Name:      "merges_total",
				Help:      "Cluster merges performed",
			},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.Runs,
		m.RunDuration,
		m.InputGenomes,
		m.Clusters,
		m.RedundantGenomes,
		m.SuppressedPairs,
		m.Merges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry to serve, e.g. with promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Run is what a finished run reports.
type Run struct {
	Duration         time.Duration
	InputGenomes     int
	Clusters         int
	RedundantGenomes int
	Merges           int

	RemovedByFullIdentity      int
	FlaggedByAlignmentFraction int
	RescuedByLength            int

	Err error
}

// ObserveRun records r. A failed run only counts towards runs_total and the
// duration histogram.
func (m *Metrics) ObserveRun(r Run) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(r.Duration.Seconds())
	if r.Err != nil {
		m.Runs.WithLabelValues(StatusFailed).Inc()
		return
	}
	m.Runs.WithLabelValues(StatusCompleted).Inc()

	m.InputGenomes.Set(float64(r.InputGenomes))
	m.Clusters.Set(float64(r.Clusters))
	m.RedundantGenomes.Set(float64(r.RedundantGenomes))
	m.Merges.Add(float64(r.Merges))
	m.SuppressedPairs.WithLabelValues("full_identity").Add(float64(r.RemovedByFullIdentity))
	m.SuppressedPairs.WithLabelValues("alignment_fraction").Add(float64(r.FlaggedByAlignmentFraction))
	m.SuppressedPairs.WithLabelValues("length_rescue").Add(float64(r.RescuedByLength))
}
