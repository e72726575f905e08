package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registration outcomes.
const (
	OutcomeCreated   = "created"
	OutcomeInvalid   = "invalid"
	OutcomeDuplicate = "duplicate"
	OutcomeError     = "error"
)

var (
	RegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registrations_total",
			Help: "Registration attempts by role and outcome",
		},
		[]string{"role", "outcome"},
	)

	RegistrationFieldErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_field_errors_total",
			Help: "Field level validation errors by kind",
		},
		[]string{"kind"},
	)

	RegistrationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "registration_duration_seconds",
			Help:    "Time spent handling a registration, hashing included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role"},
	)

	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Requests rejected by the rate limiter",
		},
		[]string{"route"},
	)
)

// ObserveRegistration records the outcome of one registration attempt.
func ObserveRegistration(role, outcome string) {
	RegistrationsTotal.WithLabelValues(role, outcome).Inc()
}

// ObserveFieldErrors counts validation errors grouped by their code.
func ObserveFieldErrors(kinds ...string) {
	for _, kind := range kinds {
		RegistrationFieldErrors.WithLabelValues(kind).Inc()
	}
}
