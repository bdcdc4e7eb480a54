package pakgo

import (
	"log/slog"

	"github.com/hupe1980/pakgo/codec"
	"github.com/hupe1980/pakgo/resource"
)

type options struct {
	codec             codec.Codec
	logger            *Logger
	metrics           MetricsCollector
	decodeConcurrency int
	eagerIndexes      bool
	rc                *resource.Controller
}

// Option configures Builder and Reader behavior.
//
// Readers created by finalize inherit the Builder's options.
type Option func(*options)

// WithCodec configures the codec used for records that do not implement
// Serializable/Deserializable. An artifact written with a non-default codec
// must be opened with the same codec.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to restore the no-op logger.
//
// Example with JSON logging:
//
//	logger := pakgo.NewJSONLogger(slog.LevelInfo)
//	r, _ := pakgo.OpenFile("people.pak", pakgo.WithLogger(logger))
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

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to restore the no-op collector.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pakgo.BasicMetricsCollector{}
//	b := pakgo.NewBuilder(pakgo.WithMetricsCollector(metrics))
//	// ... build ...
//	stats := metrics.GetStats()
//	fmt.Printf("Paks: %d, Avg latency: %dns\n", stats.PakCount, stats.PakAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithDecodeConcurrency bounds parallel record decoding in QueryAs.
// Values <= 1 decode sequentially (the default).
func WithDecodeConcurrency(n int) Option {
	return func(o *options) {
		o.decodeConcurrency = n
	}
}

// WithEagerIndexes parses every index run at open instead of lazily on first
// lookup. Open gets slower, first queries get faster, and corrupted runs are
// reported up front.
func WithEagerIndexes() Option {
	return func(o *options) {
		o.eagerIndexes = true
	}
}

// WithResourceController accounts the Reader's in-memory artifact copy
// against a shared resource controller. It only applies when Open has to
// copy the blob; mmap-backed opens hold no heap copy.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:             codec.Default,
		logger:            NoopLogger(),
		metrics:           NoopMetricsCollector{},
		decodeConcurrency: 1,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
