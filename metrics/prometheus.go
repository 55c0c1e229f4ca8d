// Package metrics provides a Prometheus implementation of
// regindex.MetricsCollector.
package metrics

import (
	"errors"
	"time"

	"github.com/hupe1980/regindex"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "regindex"
	subsystem = "filter_index"
)

// PrometheusCollector records index activity as Prometheus metrics
// labelled by index name.
type PrometheusCollector struct {
	indexed       *prometheus.CounterVec
	indexedKeys   *prometheus.HistogramVec
	dispatches    *prometheus.CounterVec
	notified      *prometheus.CounterVec
	queries       *prometheus.CounterVec
	queryHits     *prometheus.HistogramVec
	queryDuration *prometheus.HistogramVec
	fallbacks     prometheus.Counter
}

var _ regindex.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics
// with reg. A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &PrometheusCollector{
		indexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "indexed_total",
			Help:      "References indexed, reindexed or removed.",
		}, []string{"index"}),
		indexedKeys: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reference_keys",
			Help:      "Keys a reference is filed under after indexing.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
		}, []string{"index"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispatches_total",
			Help:      "Service events dispatched to listeners.",
		}, []string{"index"}),
		notified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "listener_notifications_total",
			Help:      "Listener callbacks made.",
		}, []string{"index"}),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "queries_total",
			Help:      "Routed reference queries.",
		}, []string{"index", "status"}),
		queryHits: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "query_results",
			Help:      "References returned per query.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100, 200, 500},
		}, []string{"index"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "query_duration_seconds",
			Help:      "Latency of routed reference queries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"index"}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "fallbacks_total",
			Help:      "Queries and listener filters no index was applicable to.",
		}),
	}

	var errs []error
	for _, col := range []prometheus.Collector{
		c.indexed, c.indexedKeys, c.dispatches, c.notified,
		c.queries, c.queryHits, c.queryDuration, c.fallbacks,
	} {
		if err := reg.Register(col); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// RecordIndexed implements regindex.MetricsCollector.
func (c *PrometheusCollector) RecordIndexed(index string, keys int) {
	c.indexed.WithLabelValues(index).Inc()
	c.indexedKeys.WithLabelValues(index).Observe(float64(keys))
}

// RecordDispatch implements regindex.MetricsCollector.
func (c *PrometheusCollector) RecordDispatch(index string, listeners int) {
	c.dispatches.WithLabelValues(index).Inc()
	c.notified.WithLabelValues(index).Add(float64(listeners))
}

// RecordQuery implements regindex.MetricsCollector.
func (c *PrometheusCollector) RecordQuery(index string, hits int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.queries.WithLabelValues(index, status).Inc()
	c.queryHits.WithLabelValues(index).Observe(float64(hits))
	c.queryDuration.WithLabelValues(index).Observe(duration.Seconds())
}

// RecordFallback implements regindex.MetricsCollector.
func (c *PrometheusCollector) RecordFallback() {
	c.fallbacks.Inc()
}
