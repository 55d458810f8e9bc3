// Package metrics exposes Prometheus metrics for the warehouse directory
// and its HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"varasto/internal/core/types"
	"varasto/internal/domain/warehouse"
)

// Prometheus metric names.
const (
	MetricWarehouses          = "varasto_warehouses"
	MetricMovementsTotal      = "varasto_stock_movements_total"
	MetricMovedQuantityTotal  = "varasto_stock_moved_quantity_total"
	MetricClampedTotal        = "varasto_stock_clamped_total"
	MetricHTTPRequestsTotal   = "varasto_http_requests_total"
	MetricHTTPRequestDuration = "varasto_http_request_duration_seconds"
)

// Compile-time check that Metrics implements warehouse.Observer.
var _ warehouse.Observer = (*Metrics)(nil)

// Metrics owns a private Prometheus registry.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	warehouses          prometheus.Gauge
	movementsTotal      *prometheus.CounterVec
	movedQuantityTotal  *prometheus.CounterVec
	clampedTotal        *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates and registers all metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		warehouses: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricWarehouses,
			Help: "Number of warehouses in the directory",
		}),
		movementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMovementsTotal,
			Help: "Stock and product movements by operation",
		}, []string{"operation"}),
		movedQuantityTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricMovedQuantityTotal,
			Help: "Quantity actually moved by operation",
		}, []string{"operation"}),
		clampedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricClampedTotal,
			Help: "Movements where the applied amount was less than requested",
		}, []string{"operation"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricHTTPRequestsTotal,
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricHTTPRequestDuration,
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		m.warehouses,
		m.movementsTotal,
		m.movedQuantityTotal,
		m.clampedTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WarehouseCount implements warehouse.Observer.
func (m *Metrics) WarehouseCount(n int) {
	m.warehouses.Set(float64(n))
}

// Movement implements warehouse.Observer.
func (m *Metrics) Movement(action warehouse.Action, requested, applied types.Quantity) {
	op := string(action)
	m.movementsTotal.WithLabelValues(op).Inc()
	m.movedQuantityTotal.WithLabelValues(op).Add(applied.InexactFloat64())
	if applied.LessThan(requested) {
		m.clampedTotal.WithLabelValues(op).Inc()
	}
}

// ObserveHTTP records one finished HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, latency time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(latency.Seconds())
}
