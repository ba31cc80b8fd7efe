// Package metrics exposes prometheus client_golang gauges/counters for the
// coordinator's control plane: tick duration, rollback counts, journal
// size, checkpoint count. Grounded on the teacher's internal/api/
// observability.go usage of client_golang; none of this is load-bearing
// for simulation correctness.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every gauge/counter the coordinator updates. Construct
// once per process and register with a prometheus.Registerer.
type Metrics struct {
	TickDuration   prometheus.Histogram
	Rollbacks      prometheus.Counter
	JournalInputs  prometheus.Gauge
	Checkpoints    prometheus.Gauge
	GameOverTotal  prometheus.Counter
}

// New creates a Metrics bundle with the shitbrix_ namespace.
func New() *Metrics {
	return &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shitbrix",
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16),
		}),
		Rollbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shitbrix",
			Name:      "rollbacks_total",
			Help:      "Number of times synchronize rewound to a checkpoint.",
		}),
		JournalInputs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shitbrix",
			Name:      "journal_inputs",
			Help:      "Current number of inputs retained in the journal.",
		}),
		Checkpoints: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shitbrix",
			Name:      "journal_checkpoints",
			Help:      "Current number of checkpoints retained in the journal.",
		}),
		GameOverTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shitbrix",
			Name:      "games_completed_total",
			Help:      "Number of games that reached a decided winner.",
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) {
	reg.MustRegister(m.TickDuration, m.Rollbacks, m.JournalInputs, m.Checkpoints, m.GameOverTotal)
}

// ObserveTick records how long one tick took to simulate.
func (m *Metrics) ObserveTick(start time.Time) {
	m.TickDuration.Observe(time.Since(start).Seconds())
}
