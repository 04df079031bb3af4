package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the news admin service.
// Metrics are grouped into HTTP request metrics and news operation metrics.
// All collectors are registered on the Registerer passed to NewMetrics.
type Metrics struct {
	// HTTPRequestsTotal counts HTTP requests, labeled by method, route pattern and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes HTTP request latency in seconds, labeled by method and route pattern.
	HTTPRequestDuration *prometheus.HistogramVec

	// NewsCreated counts articles created.
	NewsCreated prometheus.Counter

	// NewsUpdated counts articles updated.
	NewsUpdated prometheus.Counter

	// NewsDeleted counts articles soft-deleted.
	NewsDeleted prometheus.Counter

	// NewsNotFound counts lookups and mutations that hit a missing or deleted article, labeled by operation.
	NewsNotFound *prometheus.CounterVec

	// NewsSearches counts search requests.
	NewsSearches prometheus.Counter

	// NewsPageItems observes the number of items returned per listing, labeled by operation (list, search).
	NewsPageItems *prometheus.HistogramVec

	// WriteRateLimited counts admin write requests rejected by the rate limiter.
	WriteRateLimited prometheus.Counter
}

// NewMetrics creates a new Metrics instance registered on reg.
// The namespace is used as a prefix for all metric names.
// A nil reg registers on prometheus.DefaultRegisterer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		// News
		NewsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_created_total",
			Help:      "Total number of news articles created",
		}),
		NewsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_updated_total",
			Help:      "Total number of news articles updated",
		}),
		NewsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_deleted_total",
			Help:      "Total number of news articles soft-deleted",
		}),
		NewsNotFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_not_found_total",
			Help:      "Total number of operations that targeted a missing or deleted article",
		}, []string{"operation"}),
		NewsSearches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "news_searches_total",
			Help:      "Total number of news searches",
		}),
		NewsPageItems: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "news_page_items",
			Help:      "Number of articles returned per page",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}, []string{"operation"}),
		WriteRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_rate_limited_total",
			Help:      "Total number of admin write requests rejected by the rate limiter",
		}),
	}
}

// RecordHTTPRequest records a completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordNewsCreated increments the created counter.
func (m *Metrics) RecordNewsCreated() {
	m.NewsCreated.Inc()
}

// RecordNewsUpdated increments the updated counter.
func (m *Metrics) RecordNewsUpdated() {
	m.NewsUpdated.Inc()
}

// RecordNewsDeleted increments the deleted counter.
func (m *Metrics) RecordNewsDeleted() {
	m.NewsDeleted.Inc()
}

// RecordNewsNotFound records a not-found outcome for the given operation.
func (m *Metrics) RecordNewsNotFound(operation string) {
	m.NewsNotFound.WithLabelValues(operation).Inc()
}

// RecordNewsPage records the size of a returned listing page.
func (m *Metrics) RecordNewsPage(operation string, items int) {
	if operation == "search" {
		m.NewsSearches.Inc()
	}
	m.NewsPageItems.WithLabelValues(operation).Observe(float64(items))
}

// RecordWriteRateLimited increments the rate limited counter.
func (m *Metrics) RecordWriteRateLimited() {
	m.WriteRateLimited.Inc()
}
