package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	submissionsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surveygate_submissions_accepted_total",
		Help: "Total number of survey submissions dispatched upstream",
	})
	submissionsBlocked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surveygate_submissions_blocked_total",
		Help: "Total number of submissions denied by the anti-abuse gate",
	})
	validationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surveygate_validation_failures_total",
		Help: "Total number of submissions rejected by field validation",
	})
	dispatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "surveygate_dispatch_failures_total",
		Help: "Total number of upstream dispatch failures",
	})
)

// Register registers Prometheus collectors. Call once at startup.
func Register(registry *prometheus.Registry) {
	registry.MustRegister(submissionsAccepted, submissionsBlocked, validationFailures, dispatchFailures)
}

// IncAccepted increments the dispatched submissions counter.
func IncAccepted() { submissionsAccepted.Inc() }

// IncBlocked increments the gate-denied submissions counter.
func IncBlocked() { submissionsBlocked.Inc() }

// IncValidationFailure increments the validation-rejected counter.
func IncValidationFailure() { validationFailures.Inc() }

// IncDispatchFailure increments the dispatch failures counter.
func IncDispatchFailure() { dispatchFailures.Inc() }
