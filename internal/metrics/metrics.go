// Package metrics defines the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kns"

// Metrics holds the service collectors and the registry they live in.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	movements     *prometheus.CounterVec
	bulkItems     *prometheus.CounterVec
	schemaRetries prometheus.Counter
	events        *prometheus.CounterVec
}

// New creates the collectors in a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "movements_recorded_total",
			Help:      "Stock movements recorded by display type and outcome.",
		}, []string{"type", "outcome"}),
		bulkItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_items_total",
			Help:      "Items handled by bulk create and delete, by operation and outcome.",
		}, []string{"op", "outcome"}),
		schemaRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_retries_total",
			Help:      "Item inserts retried with the core column set.",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "Change events published by entity.",
		}, []string{"entity"}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.movements, m.bulkItems, m.schemaRetries, m.events,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one handled request.
func (m *Metrics) ObserveHTTP(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Movement records a movement. outcome is "ok", "partial" or "error".
func (m *Metrics) Movement(displayType, outcome string) {
	if m == nil {
		return
	}
	m.movements.WithLabelValues(displayType, outcome).Inc()
}

// Bulk records bulk create or delete results.
func (m *Metrics) Bulk(op string, ok, failed int) {
	if m == nil {
		return
	}
	m.bulkItems.WithLabelValues(op, "ok").Add(float64(ok))
	m.bulkItems.WithLabelValues(op, "failed").Add(float64(failed))
}

// SchemaRetry records an insert retried with the core column set.
func (m *Metrics) SchemaRetry() {
	if m == nil {
		return
	}
	m.schemaRetries.Inc()
}

// Event records a published change event.
func (m *Metrics) Event(entity string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(entity).Inc()
}
