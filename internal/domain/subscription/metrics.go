package subscription

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds registrar Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registrations   *prometheus.CounterVec
	unregistrations prometheus.Counter
}

// NewMetrics creates and registers the registrar collectors.
func NewMetrics(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskpush_registrations_total",
			Help: "Push subscription registrations by result",
		}, []string{"result"}),
		unregistrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskpush_unregistrations_total",
			Help: "Push subscriptions removed at the client's request",
		}),
	}

	for _, c := range []prometheus.Collector{m.registrations, m.unregistrations} {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("registering registrar metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) registered(result string) {
	if m == nil {
		return
	}
	m.registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) unregistered() {
	if m == nil {
		return
	}
	m.unregistrations.Inc()
}
