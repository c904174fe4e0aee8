package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	Registrations prometheus.Counter
	Decisions     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "creditline_registrations_total",
			Help: "Customers registered.",
		}),
		Decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "creditline_loan_decisions_total",
			Help: "Eligibility decisions by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.Registrations, m.Decisions)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveDecision(approved bool) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}
