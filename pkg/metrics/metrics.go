package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docdesk"

var (
	// HTTP request metrics
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// List pipeline metrics
	PipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "list_pipeline_duration_seconds",
			Help:      "Time spent normalizing, filtering, sorting and paginating one list request",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	ListResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "list_results",
			Help:      "Number of projects left after each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"stage"},
	)

	// Snapshot source metrics
	SnapshotLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_loads_total",
			Help:      "Snapshot loads per source and result",
		},
		[]string{"source", "result"},
	)

	SnapshotCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_cache_total",
			Help:      "Snapshot cache lookups by result",
		},
		[]string{"result"},
	)

	// Invalidation events consumed from the message bus
	EventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Project change events consumed",
		},
		[]string{"topic", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		PipelineDuration,
		ListResults,
		SnapshotLoads,
		SnapshotCache,
		EventsTotal,
	)
}

// Handler serves the Prometheus exposition format
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordRequest records one HTTP request
func RecordRequest(method, path, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
	RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordPipeline records the duration and stage sizes of one list request
func RecordPipeline(duration time.Duration, total, matched, page int) {
	PipelineDuration.Observe(duration.Seconds())
	ListResults.WithLabelValues("snapshot").Observe(float64(total))
	ListResults.WithLabelValues("filtered").Observe(float64(matched))
	ListResults.WithLabelValues("page").Observe(float64(page))
}

// RecordSnapshotLoad counts a snapshot load for the named source
func RecordSnapshotLoad(source string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	SnapshotLoads.WithLabelValues(source, result).Inc()
}

// RecordCacheLookup counts a snapshot cache hit or miss
func RecordCacheLookup(hit bool) {
	if hit {
		SnapshotCache.WithLabelValues("hit").Inc()
		return
	}
	SnapshotCache.WithLabelValues("miss").Inc()
}

// RecordEvent counts a consumed change event
func RecordEvent(topic, status string) {
	EventsTotal.WithLabelValues(topic, status).Inc()
}
