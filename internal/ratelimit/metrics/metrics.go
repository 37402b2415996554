package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fieldgate_ratelimit_decisions_total",
			Help: "Rate limit decisions partitioned by scope and outcome",
		}, []string{"scope", "outcome"}),
		StoreErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fieldgate_ratelimit_store_errors_total",
			Help: "Bucket store failures that caused the limiter to fail open",
		}),
	}
}

func (m *Metrics) RecordDecision(scope string, allowed bool) {
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	m.Decisions.WithLabelValues(scope, outcome).Inc()
}

func (m *Metrics) RecordStoreError() {
	m.StoreErrors.Inc()
}
