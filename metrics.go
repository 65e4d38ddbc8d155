package proptable

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordFlush is called after every flush that had dirty data.
	// bytes is the number of bytes written (0 for in-memory tables).
	RecordFlush(bytes int64, duration time.Duration, err error)

	// RecordLoad is called after a table file was loaded.
	RecordLoad(elements int, duration time.Duration, err error)

	// RecordConversionError is called when a string value is rejected.
	RecordConversionError()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFlush(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordConversionError()                  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FlushCount       atomic.Int64
	FlushErrors      atomic.Int64
	FlushBytes       atomic.Int64
	FlushTotalNanos  atomic.Int64
	LoadCount        atomic.Int64
	LoadErrors       atomic.Int64
	LoadElements     atomic.Int64
	ConversionErrors atomic.Int64
}

// RecordFlush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFlush(bytes int64, duration time.Duration, err error) {
	b.FlushCount.Add(1)
	b.FlushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FlushErrors.Add(1)
		return
	}
	b.FlushBytes.Add(bytes)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(elements int, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadElements.Add(int64(elements))
}

// RecordConversionError implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConversionError() {
	b.ConversionErrors.Add(1)
}

// MetricsStats is a point-in-time copy of BasicMetricsCollector.
type MetricsStats struct {
	FlushCount       int64
	FlushErrors      int64
	FlushBytes       int64
	AvgFlushNanos    int64
	LoadCount        int64
	LoadErrors       int64
	LoadElements     int64
	ConversionErrors int64
}

// GetStats returns a snapshot of the collected metrics.
func (b *BasicMetricsCollector) GetStats() MetricsStats {
	s := MetricsStats{
		FlushCount:       b.FlushCount.Load(),
		FlushErrors:      b.FlushErrors.Load(),
		FlushBytes:       b.FlushBytes.Load(),
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadElements:     b.LoadElements.Load(),
		ConversionErrors: b.ConversionErrors.Load(),
	}
	if s.FlushCount > 0 {
		s.AvgFlushNanos = b.FlushTotalNanos.Load() / s.FlushCount
	}
	return s
}
