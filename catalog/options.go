package catalog

import (
	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/codec"
	"github.com/hupe1980/proptable/internal/fs"
	"github.com/hupe1980/proptable/resource"
)

type options struct {
	logger     *proptable.Logger
	controller *resource.Controller
	codec      codec.Codec
	fs         fs.FileSystem
	tableOpts  []proptable.Option
}

func defaultOptions() options {
	return options{
		logger: proptable.NoopLogger(),
		codec:  codec.Default,
		fs:     fs.Default,
	}
}

// Option configures a Catalog.
type Option func(*options)

// WithLogger sets the logger for the catalog and its tables.
func WithLogger(l *proptable.Logger) Option {
	return func(o *options) {
		if l == nil {
			l = proptable.NoopLogger()
		}
		o.logger = l
	}
}

// WithController bounds concurrent flushes with the controller's background
// slots.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithCodec sets the codec for schema.json.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithTableOptions passes options to every table the catalog creates.
func WithTableOptions(optFns ...proptable.Option) Option {
	return func(o *options) {
		o.tableOpts = append(o.tableOpts, optFns...)
	}
}

// withFileSystem replaces the file system for schema reads and writes. Tests only.
func withFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}
