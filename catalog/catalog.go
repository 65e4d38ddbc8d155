// Package catalog manages the property tables of one index segment.
//
// A catalog is a directory holding schema.json and one table file per
// property:
//
//	segment-0001/
//	    schema.json
//	    price.ptb
//	    timestamp.ptb
//
// The catalog creates tables with the storage type that matches each
// property type, loads them on Open and flushes them concurrently.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/btree"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/proptable"
)

// Catalog owns the property tables stored in one directory.
// It is safe for concurrent use.
type Catalog struct {
	mu     sync.RWMutex
	dir    string
	schema *Schema
	tables map[string]proptable.PropertyTable
	names  *btree.BTreeG[string]
	closed bool

	opts options
}

// Open opens or creates the catalog in dir and loads every table listed in
// its schema.
func Open(dir string, optFns ...Option) (*Catalog, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	if err := opts.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	schema, err := readSchema(opts.fs, dir, opts.codec)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		dir:    dir,
		schema: schema,
		tables: make(map[string]proptable.PropertyTable, len(schema.Properties)),
		names:  btree.NewG(8, func(a, b string) bool { return a < b }),
		opts:   opts,
	}

	start := time.Now()
	for name, pt := range schema.Properties {
		t, err := c.newTable(name, pt)
		if err != nil {
			return nil, fmt.Errorf("catalog: open %q: %w", name, err)
		}
		c.tables[name] = t
		c.names.ReplaceOrInsert(name)
	}

	opts.logger.Info("catalog opened",
		"dir", dir,
		"properties", len(c.tables),
		"elapsed", time.Since(start),
	)
	return c, nil
}

func (c *Catalog) newTable(name string, pt proptable.PropertyType) (proptable.PropertyTable, error) {
	tableOpts := append([]proptable.Option{
		proptable.WithLogger(c.opts.logger.WithProperty(name)),
	}, c.opts.tableOpts...)

	t, err := proptable.NewForType(pt, tableOpts...)
	if err != nil {
		return nil, err
	}
	if err := t.Init(TablePath(c.dir, name)); err != nil {
		return nil, err
	}
	return t, nil
}

// Dir returns the catalog directory.
func (c *Catalog) Dir() string { return c.dir }

// Register adds a property and returns its table. If a table file for name
// already exists in the directory it is loaded.
func (c *Catalog) Register(name string, pt proptable.PropertyType) (proptable.PropertyTable, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if _, ok := c.tables[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrPropertyExists, name)
	}

	t, err := c.newTable(name, pt)
	if err != nil {
		return nil, err
	}

	c.schema.Properties[name] = pt
	if err := writeSchema(c.opts.fs, c.dir, c.opts.codec, c.schema); err != nil {
		delete(c.schema.Properties, name)
		return nil, err
	}

	c.tables[name] = t
	c.names.ReplaceOrInsert(name)
	c.opts.logger.Debug("property registered", "property", name, "type", pt)
	return t, nil
}

// Table returns the table of a property.
func (c *Catalog) Table(name string) (proptable.PropertyTable, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, false
	}
	t, ok := c.tables[name]
	return t, ok
}

// Type returns the type of a property.
func (c *Catalog) Type(name string) (proptable.PropertyType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return proptable.Unknown, false
	}
	pt, ok := c.schema.Properties[name]
	return pt, ok
}

// Names returns the registered property names in ascending order. A closed
// catalog has no names.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil
	}
	return c.namesLocked()
}

func (c *Catalog) namesLocked() []string {
	names := make([]string, 0, c.names.Len())
	c.names.Ascend(func(name string) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Schema returns a copy of the current schema. A closed catalog returns an
// empty schema.
func (c *Catalog) Schema() Schema {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return Schema{Version: schemaVersion, Properties: map[string]proptable.PropertyType{}}
	}
	return Schema{Version: c.schema.Version, Properties: maps.Clone(c.schema.Properties)}
}

// Files returns the table file path of every property.
func (c *Catalog) Files() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return map[string]string{}
	}
	files := make(map[string]string, len(c.tables))
	for name, t := range c.tables {
		files[name] = t.Path()
	}
	return files
}

// Drop removes a property and deletes its table file.
func (c *Catalog) Drop(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	t, ok := c.tables[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrPropertyNotFound, name)
	}

	pt := c.schema.Properties[name]
	delete(c.schema.Properties, name)
	if err := writeSchema(c.opts.fs, c.dir, c.opts.codec, c.schema); err != nil {
		c.schema.Properties[name] = pt
		return err
	}

	delete(c.tables, name)
	c.names.Delete(name)

	if err := c.opts.fs.Remove(t.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	c.opts.logger.Debug("property dropped", "property", name)
	return nil
}

// Flush writes every dirty table to disk. Tables are flushed concurrently,
// bounded by the controller's background slots. A failed table does not stop
// the others; all failures are returned joined.
func (c *Catalog) Flush(ctx context.Context) error {
	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return ErrClosed
	}
	names := c.namesLocked()
	tables := make([]proptable.PropertyTable, len(names))
	for i, name := range names {
		tables[i] = c.tables[name]
	}
	c.mu.RUnlock()

	return c.flush(ctx, names, tables)
}

func (c *Catalog) flush(ctx context.Context, names []string, tables []proptable.PropertyTable) error {
	var (
		mu   sync.Mutex
		errs []error
		g    errgroup.Group
	)

	rc := c.opts.controller
	start := time.Now()

	for i, t := range tables {
		if !t.Dirty() {
			continue
		}
		name := names[i]
		g.Go(func() error {
			if err := rc.AcquireBackground(ctx); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("flush %q: %w", name, err))
				mu.Unlock()
				return nil
			}
			defer rc.ReleaseBackground()

			if err := t.Flush(); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("flush %q: %w", name, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	err := errors.Join(errs...)
	if err != nil {
		c.opts.logger.ErrorContext(ctx, "catalog flush failed", "dir", c.dir, "error", err)
	} else {
		c.opts.logger.DebugContext(ctx, "catalog flushed", "dir", c.dir, "elapsed", time.Since(start))
	}
	return err
}

// FilterRange returns the positions of name whose value lies in [lo, hi].
func (c *Catalog) FilterRange(name string, lo, hi float64) (*roaring.Bitmap, error) {
	t, err := c.lookup(name)
	if err != nil {
		return nil, err
	}
	return t.FilterFloat64(lo, hi), nil
}

// Compare orders two positions by the value of property name.
func (c *Catalog) Compare(name string, lhs, rhs int) (int, error) {
	t, err := c.lookup(name)
	if err != nil {
		return 0, err
	}
	return t.Compare(lhs, rhs), nil
}

func (c *Catalog) lookup(name string) (proptable.PropertyTable, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClosed
	}
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrPropertyNotFound, name)
	}
	return t, nil
}

// Close flushes all tables and releases the catalog. Further calls return
// ErrClosed.
func (c *Catalog) Close(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.closed = true
	names := c.namesLocked()
	tables := make([]proptable.PropertyTable, len(names))
	for i, name := range names {
		tables[i] = c.tables[name]
	}
	c.mu.Unlock()

	return c.flush(ctx, names, tables)
}
