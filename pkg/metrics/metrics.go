// Package metrics exposes chartpilot's runtime health as Prometheus
// instruments: job outcomes, queue depth, query result cache hit ratio, and
// LLM provider call latency, mounted at /metrics by pkg/api.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// JobsTotal counts jobs reaching a terminal status, by status
// (completed, failed, cancelled).
var JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "chartpilot",
	Name:      "jobs_total",
	Help:      "Total number of jobs reaching a terminal status, by status.",
}, []string{"status"})

// QueueDepth is the number of jobs currently pending or processing.
var QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "chartpilot",
	Name:      "queue_depth",
	Help:      "Number of jobs currently pending or processing.",
})

// CacheHitsTotal and CacheMissesTotal together derive the query result
// cache's hit ratio.
var (
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chartpilot",
		Name:      "query_cache_hits_total",
		Help:      "Total number of query result cache hits.",
	})
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "chartpilot",
		Name:      "query_cache_misses_total",
		Help:      "Total number of query result cache misses.",
	})
)

// LLMCallDuration tracks the latency of calls to an LLM provider, labeled by
// provider name and outcome (ok/error).
var LLMCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "chartpilot",
	Name:      "llm_call_duration_seconds",
	Help:      "Duration of LLM provider calls in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"provider", "outcome"})

// Handler returns the HTTP handler to mount at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
