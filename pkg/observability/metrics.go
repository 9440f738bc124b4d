// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the geleit service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// AuthBuckets defines histogram buckets suited for request and hashing
// latencies, ranging from 1ms (token checks) to 5s (Argon2 under load).
var AuthBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5}

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geleit_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geleit_request_duration_seconds",
			Help:    "Request duration",
			Buckets: AuthBuckets,
		},
		[]string{"method"},
	)

	// AuthResolutionsTotal counts resolution cycles by outcome
	// ("success" or a failure reason label).
	AuthResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geleit_auth_resolutions_total",
			Help: "Auth context resolutions",
		},
		[]string{"outcome"},
	)

	// HashOperationsTotal counts password hash/validate operations by scheme.
	HashOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geleit_hash_operations_total",
			Help: "Password hash operations",
		},
		[]string{"scheme", "op"},
	)

	// HashDuration records password hashing duration in seconds by scheme.
	HashDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geleit_hash_duration_seconds",
			Help:    "Password hashing duration",
			Buckets: AuthBuckets,
		},
		[]string{"scheme"},
	)

	// RehashTotal counts background re-hashes of outdated credentials.
	RehashTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geleit_rehash_total",
			Help: "Background credential re-hashes",
		},
	)

	// LoginRejectedTotal counts rejected login attempts by reason
	// ("bad_credentials" or "throttled").
	LoginRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geleit_login_rejected_total",
			Help: "Rejected login attempts",
		},
		[]string{"reason"},
	)

	// BearerAuthTotal counts service bearer token checks by outcome
	// ("success" or "invalid").
	BearerAuthTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geleit_bearer_auth_total",
			Help: "Service bearer token checks",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthResolutionsTotal,
		HashOperationsTotal,
		HashDuration,
		RehashTotal,
		LoginRejectedTotal,
		BearerAuthTotal,
	)
}

// RegisterHashQueueDepth exposes the hashing pool's queue depth as the
// geleit_hash_queue_depth gauge. Called once during server wiring; the
// function is sampled at scrape time.
func RegisterHashQueueDepth(depth func() int) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "geleit_hash_queue_depth",
			Help: "Queued hashing operations",
		},
		func() float64 { return float64(depth()) },
	))
}
