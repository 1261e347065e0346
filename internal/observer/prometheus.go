package observer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics is an Observer that exports protocol counters to Prometheus.
type Metrics struct {
	EventsTotal      *prometheus.CounterVec
	FailuresTotal    *prometheus.CounterVec
	CommittedTotal   *prometheus.CounterVec
	ForwardHopsTotal prometheus.Counter
}

// NewMetrics creates and registers all protocol metrics on reg.
func NewMetrics(reg prometheus.Registerer, clusterName string) *Metrics {
	labels := prometheus.Labels{"cluster": clusterName}
	factory := promauto.With(reg)

	return &Metrics{
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "rangekv",
			Subsystem:   "protocol",
			Name:        "events_total",
			Help:        "Total number of protocol events by type and operation",
			ConstLabels: labels,
		}, []string{"event", "op"}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "rangekv",
			Subsystem:   "protocol",
			Name:        "failures_total",
			Help:        "Total number of failed commands by operation",
			ConstLabels: labels,
		}, []string{"op"}),
		CommittedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "rangekv",
			Subsystem:   "protocol",
			Name:        "committed_total",
			Help:        "Total number of committed writes by operation",
			ConstLabels: labels,
		}, []string{"op"}),
		ForwardHopsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   "rangekv",
			Subsystem:   "protocol",
			Name:        "forward_hops_total",
			Help:        "Total number of command forwards between nodes",
			ConstLabels: labels,
		}),
	}
}

// Observe implements Observer.
func (m *Metrics) Observe(e Event) {
	m.EventsTotal.WithLabelValues(string(e.Type), string(e.Op)).Inc()
	switch e.Type {
	case EventForwarded:
		m.ForwardHopsTotal.Inc()
	case EventCommitted:
		m.CommittedTotal.WithLabelValues(string(e.Op)).Inc()
	case EventFailed:
		m.FailuresTotal.WithLabelValues(string(e.Op)).Inc()
	}
}
