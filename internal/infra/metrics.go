package infra

import (
	"github.com/prometheus/client_golang/prometheus"
)

type WebhookMetrics struct {
	events  *prometheus.CounterVec
	retries prometheus.Counter
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mibe",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Gateway webhook events by event kind and outcome.",
		}, []string{"event", "outcome"}),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mibe",
			Subsystem: "webhook",
			Name:      "conflict_retries_total",
			Help:      "Units of work retried after a concurrent subscription insert.",
		}),
	}
	reg.MustRegister(m.events, m.retries)
	return m
}

// Observe is safe on a nil receiver so deployments without a scrape
// endpoint can skip metrics entirely.
func (m *WebhookMetrics) Observe(event, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(event, outcome).Inc()
}

func (m *WebhookMetrics) ConflictRetry() {
	if m == nil {
		return
	}
	m.retries.Inc()
}
