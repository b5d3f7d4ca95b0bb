// Package metrics collects Prometheus metrics for the HTTP server and the
// account, item and moderation actions behind it.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the registered metrics.
type Collector struct {
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	signins      *prometheus.CounterVec
	moderations  *prometheus.CounterVec
	itemsCreated *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "najdeno_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "najdeno_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		signins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "najdeno_signin_total",
			Help: "Sign-in attempts by result.",
		}, []string{"result"}),
		moderations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "najdeno_moderation_total",
			Help: "Item moderation decisions by item kind and new status.",
		}, []string{"kind", "status"}),
		itemsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "najdeno_items_created_total",
			Help: "Items reported by kind.",
		}, []string{"kind"}),
	}

	reg.MustRegister(c.requests, c.duration, c.signins, c.moderations, c.itemsCreated)
	return c
}

// RecordRequest records one served HTTP request. route is the matched
// pattern, not the raw path, to keep label cardinality bounded.
func (c *Collector) RecordRequest(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.duration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordSignin records a sign-in attempt. result is "ok", "invalid" or "banned".
func (c *Collector) RecordSignin(result string) {
	c.signins.WithLabelValues(result).Inc()
}

// RecordModeration records an item status change by an administrator.
func (c *Collector) RecordModeration(kind, status string) {
	c.moderations.WithLabelValues(kind, status).Inc()
}

// RecordItemCreated records a new item report.
func (c *Collector) RecordItemCreated(kind string) {
	c.itemsCreated.WithLabelValues(kind).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
