package shoppinglist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntriesTotal tracks the number of entries in the persisted list.
	EntriesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pantry",
			Subsystem: "shopping_list",
			Name:      "entries",
			Help:      "Current number of shopping list entries",
		},
	)

	// AddTotal counts add requests.
	// Labels: outcome (added, duplicate, not_found)
	AddTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "shopping_list",
			Name:      "adds_total",
			Help:      "Total number of add to list requests by outcome",
		},
		[]string{"outcome"},
	)

	CheckoutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "shopping_list",
			Name:      "checkouts_total",
			Help:      "Total number of completed checkouts",
		},
	)

	// ShareTotal counts share requests.
	// Labels: outcome (shared, canceled, copied)
	ShareTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "shopping_list",
			Name:      "shares_total",
			Help:      "Total number of share requests by outcome",
		},
		[]string{"outcome"},
	)
)
