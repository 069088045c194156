package sync

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics счетчики движка синхронизации. Методы безопасны для nil.
type Metrics struct {
	pushRecords *prometheus.CounterVec
	pulledTotal prometheus.Counter
	conflicts   prometheus.Counter
	duration    *prometheus.HistogramVec
}

// NewMetrics регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		pushRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wordkeeper",
			Subsystem: "sync",
			Name:      "push_records_total",
			Help:      "Records received by push, by outcome.",
		}, []string{"outcome"}),
		pulledTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wordkeeper",
			Subsystem: "sync",
			Name:      "pulled_records_total",
			Help:      "Records served by pull.",
		}),
		conflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "wordkeeper",
			Subsystem: "sync",
			Name:      "conflict_logs_total",
			Help:      "Conflict log entries stored.",
		}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wordkeeper",
			Subsystem: "sync",
			Name:      "operation_duration_seconds",
			Help:      "Duration of sync operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

func (m *Metrics) startTimer(op string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) pulled(n int) {
	if m == nil {
		return
	}
	m.pulledTotal.Add(float64(n))
}

func (m *Metrics) conflictsLogged(n int) {
	if m == nil {
		return
	}
	m.conflicts.Add(float64(n))
}

func (m *Metrics) pushOutcome(o pushOutcome) {
	if m == nil {
		return
	}
	m.pushRecords.WithLabelValues(o.String()).Inc()
}

func (o pushOutcome) String() string {
	switch o {
	case outcomeApplied:
		return "applied"
	case outcomeLogged:
		return "logged"
	case outcomeStale:
		return "stale"
	case outcomeRejected:
		return "rejected"
	case outcomeFatal:
		return "fatal"
	}
	return "unknown"
}
