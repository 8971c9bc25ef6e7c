package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the portal's payment pipeline counters. Each instance owns
// its registry so tests can construct metrics independently.
type Metrics struct {
	Registry *prometheus.Registry

	WebhookDeliveries  *prometheus.CounterVec
	PaymentTransitions *prometheus.CounterVec
	ReconcileFlagged   prometheus.Counter
}

func (m *Metrics) DeliveryObserved(outcome string) {
	m.WebhookDeliveries.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TransitionCommitted(status string) {
	m.PaymentTransitions.WithLabelValues(status).Inc()
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		WebhookDeliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Inbound webhook deliveries by outcome.",
		}, []string{"outcome"}),
		PaymentTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "payment",
			Name:      "transitions_total",
			Help:      "Committed payment status transitions.",
		}, []string{"status"}),
		ReconcileFlagged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "reconcile",
			Name:      "flagged_total",
			Help:      "Payments flagged by the reconciliation sweep.",
		}),
	}
}
