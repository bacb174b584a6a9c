package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookstore_cache_requests_total",
			Help: "Response cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	cacheInvalidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookstore_cache_invalidation_failures_total",
			Help: "Cache invalidations that could not reach Redis",
		},
	)
)
