package engine

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "generations_total",
			Help:      "Finished generations by terminal reason",
		},
		[]string{"reason"},
	)

	fragmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "fragments_total",
			Help:      "Fragments delivered to sinks",
		},
	)

	activeGenerations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "active_generations",
			Help:      "Generations currently in flight",
		},
	)

	loadDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "engine",
			Name:      "load_duration_seconds",
			Help:      "Time spent opening model sessions",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

func init() {
	prometheus.MustRegister(generationsTotal, fragmentsTotal, activeGenerations, loadDuration)
}
