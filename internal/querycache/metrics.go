package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_query_cache_hits_total",
		Help: "Number of queries answered from the query cache.",
	})
	cacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_query_cache_misses_total",
		Help: "Number of queries that had to be loaded from the database.",
	})
	cacheInvalidations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_query_cache_invalidated_keys_total",
		Help: "Number of cached queries dropped by tag invalidation.",
	})
	cacheStaleLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "snapgram_query_cache_stale_loads_total",
		Help: "Number of loaded results not cached because their tags were invalidated meanwhile.",
	})
)
