package dbhandler

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	statements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	swallowed  *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dbhandler",
			Name:      "statements_total",
			Help:      "Number of executed statements by operation and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dbhandler",
			Name:      "statement_duration_seconds",
			Help:      "Statement execution latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		swallowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dbhandler",
			Name:      "swallowed_errors_total",
			Help:      "Number of failures reported as neutral results by the convenience methods.",
		}, []string{"op"}),
	}

	m.statements = register(reg, m.statements)
	m.duration = register(reg, m.duration)
	m.swallowed = register(reg, m.swallowed)
	return m
}

// register registers a collector, reusing an identical collector that is
// already registered (e.g. by another Handler on the same registry).
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.statements.WithLabelValues(op, outcome).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *metrics) swallow(op string) {
	if m == nil {
		return
	}
	m.swallowed.WithLabelValues(op).Inc()
}
