package trajan

import (
	"log/slog"

	"github.com/softsim/trajan/resource"
	"github.com/softsim/trajan/snapshot"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	workers          int
	leafCapacity     int
	typeTrees        bool
	replicateImages  bool
	compression      snapshot.Compression
	controller       *resource.Controller
}

// Option configures analyzer construction behavior.
type Option func(*options)

// WithWorkers bounds the concurrency of parallel passes (queries, histogram
// accumulation, annealing replicates). Zero or negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLeafCapacity sets the number of particles collected per tree leaf.
// Smaller leaves descend further before scanning; larger leaves trade tree
// depth for linear work. Zero keeps the default.
func WithLeafCapacity(n int) Option {
	return func(o *options) {
		o.leafCapacity = n
	}
}

// WithTypeTrees builds one independent tree per particle type when the frame
// carries type ids. Queries then search each type's tree and merge, so a
// type-heterogeneous system avoids scanning unrelated particles.
func WithTypeTrees(enabled bool) Option {
	return func(o *options) {
		o.typeTrees = enabled
	}
}

// WithReplicatedImages inserts the first shell of periodic images into the
// tree at build time instead of enumerating images per query. Build cost and
// memory grow with the image count; queries against small dense boxes get
// cheaper.
func WithReplicatedImages(enabled bool) Option {
	return func(o *options) {
		o.replicateImages = enabled
	}
}

// WithCompression sets the section codec used when encoding snapshots.
// Decoding always reads whatever the stream was written with.
func WithCompression(c snapshot.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithTransferController bounds archive transfers with the given resource
// controller. Pushes and pulls then take a transfer slot and move bytes
// through its bandwidth limiter.
//
// Example:
//
//	rc := resource.NewController(resource.Config{
//	    MaxConcurrentTransfers: 4,
//	    BandwidthBytesPerSec:   64 << 20,
//	})
//	tj, _ := trajan.New(f, trajan.WithTransferController(rc))
func WithTransferController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &trajan.BasicMetricsCollector{}
//	tj, _ := trajan.New(f, trajan.WithMetricsCollector(metrics))
//	// ... use tj ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := trajan.NewJSONLogger(slog.LevelInfo)
//	tj, _ := trajan.New(f, trajan.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
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

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		compression:      snapshot.DefaultOptions.Compression,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
