package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the worker's Prometheus instruments. They are registered on
// the registerer passed to [NewMetrics], so tests and multiple runtimes in
// one process do not collide on the default registry.
type Metrics struct {
	Frames            prometheus.Counter
	Reconciles        prometheus.Counter
	ReconcileDuration prometheus.Histogram
	IdentitiesMinted  prometheus.Counter
	StatesCollected   prometheus.Counter
	Dispatches        *prometheus.CounterVec
	DispatchMisses    prometheus.Counter
	JobsStarted       prometheus.Counter
	JobsCompleted     prometheus.Counter
	JobsDropped       prometheus.Counter
	LiveNodes         prometheus.Gauge
}

// NewMetrics creates and registers the instruments on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Frames: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "frames_total",
			Help:      "Frames laid out and painted by the worker.",
		}),
		Reconciles: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "reconciles_total",
			Help:      "Reconciliation passes.",
		}),
		ReconcileDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fiber",
			Name:      "reconcile_duration_seconds",
			Help:      "Time spent reconciling and collecting state.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		IdentitiesMinted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "identities_minted_total",
			Help:      "Fresh node identities assigned by the reconciler.",
		}),
		StatesCollected: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "states_collected_total",
			Help:      "State entries dropped for unmounted identities.",
		}),
		Dispatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "dispatches_total",
			Help:      "Input events dispatched into the trees, by kind.",
		}, []string{"kind"}),
		DispatchMisses: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "dispatch_misses_total",
			Help:      "Input events that found no target.",
		}),
		JobsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "jobs_started_total",
			Help:      "Queued update work started.",
		}),
		JobsCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "jobs_completed_total",
			Help:      "Queued update work delivered back to its component.",
		}),
		JobsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: "fiber",
			Name:      "jobs_dropped_total",
			Help:      "Completions discarded because their component was unmounted.",
		}),
		LiveNodes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "fiber",
			Name:      "live_nodes",
			Help:      "Nodes in the current component tree.",
		}),
	}
}
