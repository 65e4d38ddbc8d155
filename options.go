package proptable

import (
	"time"

	"github.com/hupe1980/proptable/internal/fs"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	fs               fs.FileSystem
	location         *time.Location
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		fs:               fs.Default,
		location:         time.Local,
	}
}

// Option configures a Table.
type Option func(*options)

// WithLogger configures structured logging for load and flush.
// If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example:
//
//	metrics := &proptable.BasicMetricsCollector{}
//	t := proptable.New[float32](proptable.Float, proptable.WithMetricsCollector(metrics))
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithFileSystem replaces the file system used to read and write table
// files. Tables on the default local file system are loaded through a memory
// map; any other FileSystem is read with OpenFile and ReadAt.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys == nil {
			fsys = fs.Default
		}
		o.fs = fsys
	}
}

// WithLocation sets the time zone used to format Datetime properties.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc == nil {
			loc = time.Local
		}
		o.location = loc
	}
}
