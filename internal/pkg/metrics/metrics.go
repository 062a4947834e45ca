// Package metrics exposes Prometheus counters for entitlement decisions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyfox_validations_total",
			Help: "Generation requests validated, by plan and outcome",
		},
		[]string{"plan", "outcome"},
	)

	FeatureDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyfox_feature_denials_total",
			Help: "Requested features denied by plan",
		},
		[]string{"plan", "feature"},
	)

	AdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyfox_value_adjustments_total",
			Help: "Numeric request values adjusted to plan limits",
		},
		[]string{"plan", "field"},
	)

	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyfox_generations_total",
			Help: "Generation submissions, by plan and result",
		},
		[]string{"plan", "result"},
	)

	WebhooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copyfox_billing_webhooks_total",
			Help: "Billing webhooks received, by provider and result",
		},
		[]string{"provider", "result"},
	)
)

// Validation outcomes.
const (
	OutcomeValid    = "valid"
	OutcomeAdjusted = "adjusted"
	OutcomeDenied   = "denied"
)

// ObserveValidation records one validation. denied lists feature names, adjusted field names.
func ObserveValidation[F, A ~string](plan string, valid bool, denied []F, adjusted []A) {
	outcome := OutcomeValid
	switch {
	case !valid:
		outcome = OutcomeDenied
	case len(adjusted) > 0:
		outcome = OutcomeAdjusted
	}
	ValidationsTotal.WithLabelValues(plan, outcome).Inc()
	for _, f := range denied {
		FeatureDenialsTotal.WithLabelValues(plan, string(f)).Inc()
	}
	for _, f := range adjusted {
		AdjustmentsTotal.WithLabelValues(plan, string(f)).Inc()
	}
}
