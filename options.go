package regindex

import (
	"log/slog"

	"github.com/hupe1980/regindex/index"
)

// DefaultRouteCacheSize is the default number of memoized routing
// decisions.
const DefaultRouteCacheSize = 1024

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	routeCacheSize   int
}

// Option configures Cache construction.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &regindex.BasicMetricsCollector{}
//	cache, _ := regindex.NewFromConfig("*aspect*;*adapter*;objectClass", regindex.WithMetricsCollector(metrics))
//	// ... use cache ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := regindex.NewJSONLogger(slog.LevelInfo)
//	cache, _ := regindex.NewFromConfig(cfg, regindex.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithRouteCacheSize sets how many (class, filter) routing decisions are
// memoized. Zero or less disables memoization.
func WithRouteCacheSize(n int) Option {
	return func(o *options) {
		o.routeCacheSize = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		routeCacheSize:   DefaultRouteCacheSize,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// indexOptions returns the options passed to indices built from a config
// string.
func (o options) indexOptions() []index.Option {
	return []index.Option{
		index.WithLogger(o.logger.Logger),
		index.WithMetrics(o.metricsCollector),
	}
}
