package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts handled FIX traffic. It satisfies handler.Metrics.
type Metrics struct {
	registry         *prometheus.Registry
	logons           *prometheus.CounterVec
	orders           *prometheus.CounterVec
	marketData       *prometheus.CounterVec
	dispatchFailures *prometheus.CounterVec
	dropCopyEvents   *prometheus.CounterVec
}

// NewMetrics creates the counters on a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		logons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fix_logons_total",
			Help: "Logon attempts by outcome.",
		}, []string{"outcome"}),
		orders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fix_orders_total",
			Help: "New order singles by outcome.",
		}, []string{"outcome"}),
		marketData: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fix_market_data_requests_total",
			Help: "Market data requests by outcome.",
		}, []string{"outcome"}),
		dispatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fix_dispatch_failures_total",
			Help: "Outbound messages that could not be handed to their session.",
		}, []string{"msg_type"}),
		dropCopyEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fix_dropcopy_events_total",
			Help: "Drop copy outbox events by stage.",
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.logons,
		m.orders,
		m.marketData,
		m.dispatchFailures,
		m.dropCopyEvents,
	)
	return m
}

func (m *Metrics) ObserveLogon(outcome string) {
	m.logons.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveOrder(outcome string) {
	m.orders.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveMarketDataRequest(outcome string) {
	m.marketData.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDispatchFailure(msgType string) {
	m.dispatchFailures.WithLabelValues(msgType).Inc()
}

// ObserveDropCopy counts outbox activity: "appended", "published" or "failed"
func (m *Metrics) ObserveDropCopy(stage string) {
	m.dropCopyEvents.WithLabelValues(stage).Inc()
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
