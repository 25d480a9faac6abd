package dashboard

import (
	"github.com/bissquit/safety-dashboard/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "safetydashboard"

var (
	incidentsReported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "incidents",
			Name:      "reported_total",
			Help:      "Incidents added through the form",
		},
		[]string{"severity"},
	)

	incidentsCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "incidents",
			Name:      "current",
			Help:      "Incidents in the canonical collection by severity",
		},
		[]string{"severity"},
	)

	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "validation_failures_total",
			Help:      "Form submissions rejected by validation, per failing field",
		},
		[]string{"field"},
	)

	formClosed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "closed_total",
			Help:      "Form closures by reason",
		},
		[]string{"reason"},
	)

	staleCompletions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "form",
			Name:      "stale_completions_total",
			Help:      "Delayed submissions dropped because their form was no longer open",
		},
	)
)

func recordIncidentReported(severity domain.Severity) {
	incidentsReported.WithLabelValues(string(severity)).Inc()
}

func recordValidationFailure(field string) {
	validationFailures.WithLabelValues(field).Inc()
}

func recordFormClosed(reason CloseReason) {
	formClosed.WithLabelValues(string(reason)).Inc()
}

func recordStaleCompletion() {
	staleCompletions.Inc()
}

// recordCollection updates the per-severity gauge.
func recordCollection(bySeverity map[domain.Severity]int) {
	for sev, n := range bySeverity {
		incidentsCurrent.WithLabelValues(string(sev)).Set(float64(n))
	}
}
