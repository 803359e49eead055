// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the warren gateway.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, route, and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warren_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warren_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// DispatchesTotal counts completion dispatches by provider dialect and outcome.
	DispatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warren_dispatches_total",
			Help: "Completion dispatches",
		},
		[]string{"dialect", "status"},
	)

	// DispatchLatency records backend dispatch latency in seconds by dialect.
	DispatchLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "warren_dispatch_latency_seconds",
			Help:    "Dispatch latency",
			Buckets: LLMBuckets,
		},
		[]string{"dialect"},
	)

	// ProviderCount tracks the number of registered providers.
	ProviderCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "warren_provider_count",
			Help: "Registered providers",
		},
	)

	// CredentialSyncsTotal counts keyring rebuilds from the provider table.
	CredentialSyncsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "warren_credential_syncs_total",
			Help: "Keyring syncs",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		DispatchesTotal,
		DispatchLatency,
		ProviderCount,
		CredentialSyncsTotal,
	)
}
