package backup

import (
	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/codec"
	"github.com/hupe1980/proptable/resource"
)

type options struct {
	compression Compression
	controller  *resource.Controller
	logger      *proptable.Logger
	codec       codec.Codec
	concurrency int
	bufferSize  int
}

func defaultOptions() options {
	return options{
		compression: CompressionZstd,
		logger:      proptable.NoopLogger(),
		codec:       codec.Default,
		concurrency: 4,
		bufferSize:  256 * 1024,
	}
}

// Option configures a Manager.
type Option func(*options)

// WithCompression sets the compression for new backups. Defaults to zstd.
func WithCompression(c Compression) Option {
	return func(o *options) { o.compression = c }
}

// WithController applies the controller's IO rate limit, memory budget and
// background slots to backup and restore streams.
func WithController(rc *resource.Controller) Option {
	return func(o *options) { o.controller = rc }
}

// WithLogger sets the logger.
func WithLogger(l *proptable.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = proptable.NoopLogger()
		}
		o.logger = l
	}
}

// WithCodec sets the codec for manifests.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithConcurrency sets the number of tables transferred in parallel.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}
