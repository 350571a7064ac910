package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Route cache counters. Mirrors of the cache's internal stats so operators
// can watch hit rates without hitting the stats endpoint.
var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_cache_hits_total",
		Help: "Route cache lookups that returned a live entry",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_cache_misses_total",
		Help: "Route cache lookups that found nothing usable",
	})
	CacheSets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_cache_sets_total",
		Help: "Route cache writes",
	})
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_cache_evictions_total",
		Help: "Route cache entries evicted after TTL expiry",
	})
)

var (
	GraphEdges = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "route_graph_edges",
		Help: "Edges in the current route graph, per provider",
	}, []string{"provider"})
	GraphBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_graph_build_seconds",
		Help:    "Wall time of full graph rebuilds",
		Buckets: prometheus.DefBuckets,
	})
	GraphBuildFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "route_graph_build_failures_total",
		Help: "Adapter catalog fetches that failed during a rebuild",
	})
)

var (
	MonitorScans = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deposit_monitor_scans_total",
		Help: "Deposit monitor scan passes",
	})
	MonitorDeposits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deposit_monitor_deposits_total",
		Help: "Deposits detected and recorded by the monitor",
	})
	MonitorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "deposit_monitor_errors_total",
		Help: "Per-quote lookup failures during monitor scans",
	})
)
