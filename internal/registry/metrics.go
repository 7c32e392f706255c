package registry

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registrationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agentreg",
		Subsystem: "registry",
		Name:      "registrations_total",
		Help:      "Registration attempts by outcome.",
	}, []string{"outcome"})

	registrationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "agentreg",
		Subsystem: "registry",
		Name:      "registration_duration_seconds",
		Help:      "End-to-end registration latency including balance verification.",
		Buckets:   prometheus.DefBuckets,
	})

	registrationEventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "agentreg",
		Subsystem: "registry",
		Name:      "events_emitted_total",
		Help:      "agent_registered events emitted.",
	})
)

func init() {
	prometheus.MustRegister(registrationsTotal, registrationDuration, registrationEventsTotal)
}

// Outcome labels for registrationsTotal.
const (
	outcomeCommitted       = "committed"
	outcomeInvalidMetadata = "invalid_metadata"
	outcomeDuplicate       = "already_registered"
	outcomeInsufficient    = "insufficient_balance"
	outcomeUnavailable     = "verification_unavailable"
	outcomeError           = "error"
)
