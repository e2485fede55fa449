package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the application.
// Following the explicit dependency injection pattern, this struct
// is passed to all components that need to record metrics. All Record*
// methods are nil-safe so callers never have to guard.
type Metrics struct {
	// Solana RPC metrics
	rpcCallsTotal   *prometheus.CounterVec
	rpcCallDuration *prometheus.HistogramVec

	// Marketplace data-service metrics
	marketplaceCallsTotal   *prometheus.CounterVec
	marketplaceCallDuration *prometheus.HistogramVec
	listingCacheLookups     *prometheus.CounterVec

	// Action metrics
	actionsServedTotal     *prometheus.CounterVec
	transactionsBuiltTotal *prometheus.CounterVec

	// HTTP metrics
	httpRequestDuration *prometheus.HistogramVec
	httpRequestsTotal   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		rpcCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solana_rpc_calls_total",
				Help: "Total number of Solana RPC calls by method and status",
			},
			[]string{"method", "status", "endpoint"},
		),
		rpcCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solana_rpc_call_duration_seconds",
				Help:    "Duration of Solana RPC calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method", "endpoint"},
		),
		marketplaceCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_api_calls_total",
				Help: "Total number of marketplace data-service calls by operation and status",
			},
			[]string{"operation", "status"},
		),
		marketplaceCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketplace_api_call_duration_seconds",
				Help:    "Duration of marketplace data-service calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"operation"},
		),
		listingCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "listing_cache_lookups_total",
				Help: "Listing cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),
		actionsServedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "actions_served_total",
				Help: "Total number of action requests served by action and status",
			},
			[]string{"action", "status"},
		),
		transactionsBuiltTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transactions_built_total",
				Help: "Total number of unsigned transactions built by kind and status",
			},
			[]string{"kind", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"handler", "method"},
		),
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by handler, method, and status code",
			},
			[]string{"handler", "method", "status"},
		),
	}
}

// RecordRPCCall records a Solana RPC call with its outcome and duration.
func (m *Metrics) RecordRPCCall(method, status, endpoint string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.rpcCallsTotal.WithLabelValues(method, status, endpoint).Inc()
	m.rpcCallDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordMarketplaceCall records a marketplace data-service call.
func (m *Metrics) RecordMarketplaceCall(operation, status string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.marketplaceCallsTotal.WithLabelValues(operation, status).Inc()
	m.marketplaceCallDuration.WithLabelValues(operation).Observe(durationSeconds)
}

// RecordListingCacheLookup records a listing cache hit or miss.
func (m *Metrics) RecordListingCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.listingCacheLookups.WithLabelValues(result).Inc()
}

// RecordActionServed records an action request outcome ("buy" or "bid").
func (m *Metrics) RecordActionServed(action, status string) {
	if m == nil {
		return
	}
	m.actionsServedTotal.WithLabelValues(action, status).Inc()
}

// RecordTransactionBuilt records an attempt to build an unsigned transaction.
func (m *Metrics) RecordTransactionBuilt(kind, status string) {
	if m == nil {
		return
	}
	m.transactionsBuiltTotal.WithLabelValues(kind, status).Inc()
}

// RecordHTTPRequest records an HTTP request with its status code and duration.
func (m *Metrics) RecordHTTPRequest(handler, method string, statusCode int, durationSeconds float64) {
	if m == nil {
		return
	}
	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(handler, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(handler, method).Observe(durationSeconds)
}
