package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph metrics
	GraphOperations        *prometheus.CounterVec
	GraphOperationDuration *prometheus.HistogramVec
	GraphEntities          *prometheus.GaugeVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
}

// NewCollector creates a collector with its own registry. Process and Go
// runtime collectors are registered alongside the application metrics.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		GraphOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_operations_total",
				Help:      "Total number of graph operations by outcome",
			},
			[]string{"operation", "status"},
		),
		GraphOperationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_operation_duration_seconds",
				Help:      "Graph operation duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"operation"},
		),
		GraphEntities: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "graph_entities",
				Help:      "Number of nodes, edges and paths in the graph",
			},
			[]string{"kind"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of snapshot store operations",
			},
			[]string{"backend", "operation", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.GraphOperations,
		c.GraphOperationDuration,
		c.GraphEntities,
		c.StoreOperations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordGraphOperation counts an operation and observes its duration
func (c *Collector) RecordGraphOperation(operation string, success bool, duration time.Duration) {
	c.GraphOperations.WithLabelValues(operation, statusLabel(success)).Inc()
	c.GraphOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetGraphEntities publishes the current graph size
func (c *Collector) SetGraphEntities(nodes, edges, paths int) {
	c.GraphEntities.WithLabelValues("node").Set(float64(nodes))
	c.GraphEntities.WithLabelValues("edge").Set(float64(edges))
	c.GraphEntities.WithLabelValues("path").Set(float64(paths))
}

// RecordHTTPRequest counts a request against its route pattern
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordStoreOperation counts a snapshot store call
func (c *Collector) RecordStoreOperation(backend, operation string, success bool) {
	c.StoreOperations.WithLabelValues(backend, operation, statusLabel(success)).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ResetForTesting clears every application series, keeping the registrations
func (c *Collector) ResetForTesting() {
	c.HTTPRequests.Reset()
	c.HTTPDuration.Reset()
	c.GraphOperations.Reset()
	c.GraphOperationDuration.Reset()
	c.GraphEntities.Reset()
	c.StoreOperations.Reset()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
