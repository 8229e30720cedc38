package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WebhookMetrics covers the gateway-facing endpoint. Business-rule errors
// are expected traffic (the gateway probes state), so they get their own
// outcome label instead of being lumped in with infra failures.
type WebhookMetrics struct {
	RequestsTotal   prometheus.CounterVec
	RequestDuration prometheus.HistogramVec
}

func NewWebhookMetrics() *WebhookMetrics {
	return &WebhookMetrics{
		RequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payme_webhook_requests_total",
				Help: "Gateway webhook calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		RequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "payme_webhook_request_duration_seconds",
				Help:    "Gateway webhook handling time in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method"},
		),
	}
}

// Outcome label values.
const (
	OutcomeOK           = "ok"
	OutcomeBusinessErr  = "business_error"
	OutcomeInternalErr  = "internal_error"
	OutcomeUnauthorized = "unauthorized"
	OutcomeBadRequest   = "bad_request"
)

func (m *WebhookMetrics) RecordRequest(method, outcome string, seconds float64) {
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(seconds)
}
