package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CacheOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_operations_total",
			Help: "Cache-aside operations by namespace, operation and result.",
		},
		[]string{"namespace", "op", "result"},
	)

	CacheEvictedKeysCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_evicted_keys_total",
			Help: "Keys removed by namespace-wide eviction.",
		},
		[]string{"namespace"},
	)

	AuthFailuresCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_auth_failures_total",
			Help: "Rejected requests and logins by reason.",
		},
		[]string{"reason"},
	)
)

// ObserveCacheOperation records one cache operation outcome.
func ObserveCacheOperation(namespace, op, result string) {
	CacheOperationsCounter.WithLabelValues(namespace, op, result).Inc()
}

// AddEvictedKeys records keys removed by a namespace-wide eviction.
func AddEvictedKeys(namespace string, n int64) {
	if n > 0 {
		CacheEvictedKeysCounter.WithLabelValues(namespace).Add(float64(n))
	}
}

// IncrementAuthFailure records a rejected authentication or authorization attempt.
func IncrementAuthFailure(reason string) {
	AuthFailuresCounter.WithLabelValues(reason).Inc()
}
