package tracker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"pantry/internal/model"
)

var (
	// ItemsTotal tracks the current number of tracked items by status.
	// Labels: status (success, warning, urgent)
	ItemsTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "pantry",
			Subsystem: "tracker",
			Name:      "items",
			Help:      "Current number of tracked items by depletion status",
		},
		[]string{"status"},
	)

	// RefreshTotal counts recompute passes.
	// Labels: source (catalog, seed, error)
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "tracker",
			Name:      "refreshes_total",
			Help:      "Total number of tracker refreshes by item source",
		},
		[]string{"source"},
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pantry",
			Subsystem: "tracker",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of tracker refreshes in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// PrunedTimestamps counts start epochs dropped because their product left the catalog.
	PrunedTimestamps = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "tracker",
			Name:      "pruned_timestamps_total",
			Help:      "Total number of orphaned start timestamps removed",
		},
	)
)

func updateItemMetrics(items []model.TrackedItem) {
	counts := map[model.Status]float64{
		model.StatusSuccess: 0,
		model.StatusWarning: 0,
		model.StatusUrgent:  0,
	}
	for _, ti := range items {
		counts[ti.Status]++
	}
	for status, n := range counts {
		ItemsTotal.WithLabelValues(string(status)).Set(n)
	}
}
