package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChecksTotal counts session validations.
	// Labels: result (valid, anonymous, invalid, error)
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "session",
			Name:      "checks_total",
			Help:      "Total number of session validations by result",
		},
		[]string{"result"},
	)

	LoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Total number of sessions issued",
		},
	)
)
