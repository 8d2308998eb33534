package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the Prometheus collectors of the points server.
type Metrics struct {
	registry *prometheus.Registry

	Mutations       *prometheus.CounterVec
	GateEvents      *prometheus.CounterVec
	PersistFailures prometheus.Counter
	Balance         prometheus.Gauge
	Entries         prometheus.Gauge
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "points",
			Name:      "mutations_total",
			Help:      "Ledger mutations applied, by kind.",
		}, []string{"kind"}),
		GateEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "points",
			Name:      "gate_events_total",
			Help:      "Admin gate events: prompted, unlocked, rejected, cancelled.",
		}, []string{"event"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "points",
			Name:      "persist_failures_total",
			Help:      "Saves that failed after a mutation.",
		}),
		Balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "points",
			Name:      "balance",
			Help:      "Current balance of the active period.",
		}),
		Entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "points",
			Name:      "entries",
			Help:      "Number of entries in the active period.",
		}),
	}
	reg.MustRegister(m.Mutations, m.GateEvents, m.PersistFailures, m.Balance, m.Entries)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
