// pkg/metrics/metrics.go

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "litview"
)

var (
	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "duration_seconds",
			Help:      "Time spent running an inspection query. Broken down by operation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"op"},
	)

	queryCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "total",
			Help:      "Number of inspection queries. Broken down by operation and result code.",
		},
		[]string{"op", "code"},
	)

	cacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chunk_cache",
			Name:      "events_total",
			Help:      "Chunk cache hits, misses, stores, rejected stores and evictions.",
		},
		[]string{"event"},
	)

	cacheBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chunk_cache",
			Name:      "bytes",
			Help:      "Decompressed bytes held by the chunk cache.",
		},
	)
)

var register sync.Once
var registry *prometheus.Registry

// Registry returns the registry holding every litview collector.
func Registry() *prometheus.Registry {
	register.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(queryDuration, queryCount, cacheEvents, cacheBytes)
	})
	return registry
}

func sinceInSeconds(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// QueryDone records one finished query; code is "ok" or the error kind.
func QueryDone(op, code string, start time.Time) {
	queryDuration.WithLabelValues(op).Observe(sinceInSeconds(start))
	queryCount.WithLabelValues(op, code).Inc()
}

func CacheEvent(event string) {
	cacheEvents.WithLabelValues(event).Inc()
}

func CacheBytes(delta int64) {
	cacheBytes.Add(float64(delta))
}
