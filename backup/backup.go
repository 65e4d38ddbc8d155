// Package backup copies catalogs to blob storage and restores them.
//
// A backup is a set of objects under a unique id:
//
//	<id>/price.ptb.zst
//	<id>/timestamp.ptb.zst
//	<id>/schema.json
//	<id>/MANIFEST.json
//
// The manifest is written last. A backup without a manifest is incomplete and
// is ignored by List.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/blobstore"
	"github.com/hupe1980/proptable/catalog"
	"github.com/hupe1980/proptable/resource"
)

// Manager creates, lists, restores and deletes backups in a blob store.
type Manager struct {
	store blobstore.BlobStore
	opts  options
}

// New creates a Manager for store.
func New(store blobstore.BlobStore, optFns ...Option) *Manager {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Manager{store: store, opts: opts}
}

// Backup flushes cat and uploads every table file plus the schema.
func (m *Manager) Backup(ctx context.Context, cat *catalog.Catalog) (*Manifest, error) {
	if _, err := m.opts.compression.MarshalText(); err != nil {
		return nil, err
	}
	if err := cat.Flush(ctx); err != nil {
		return nil, fmt.Errorf("backup: flush catalog: %w", err)
	}

	schema := cat.Schema()
	files := cat.Files()

	manifest := &Manifest{
		Version:     manifestVersion,
		ID:          uuid.NewString(),
		Created:     time.Now().UTC(),
		Compression: m.opts.compression,
		SourceDir:   cat.Dir(),
		Properties:  make([]PropertyEntry, 0, len(schema.Properties)),
	}
	for _, name := range cat.Names() {
		manifest.Properties = append(manifest.Properties, PropertyEntry{
			Name: name,
			Type: schema.Properties[name],
		})
	}

	logger := m.opts.logger.With("backup_id", manifest.ID)
	start := time.Now()

	err := m.uploadAll(ctx, manifest, files)
	if err == nil {
		err = m.putEncoded(ctx, schemaName(manifest.ID), &schema, false)
	}
	if err == nil {
		err = m.putEncoded(ctx, manifestName(manifest.ID), manifest, true)
	}
	if err != nil {
		m.cleanup(manifest.ID)
		m.opts.logger.LogBackup(ctx, manifest.ID, len(manifest.Properties), err)
		return nil, err
	}

	logger.DebugContext(ctx, "backup uploaded",
		"raw_bytes", manifest.TotalRawSize(),
		"elapsed", time.Since(start),
	)
	m.opts.logger.LogBackup(ctx, manifest.ID, len(manifest.Properties), nil)
	return manifest, nil
}

func (m *Manager) uploadAll(ctx context.Context, manifest *Manifest, files map[string]string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.concurrency)

	for i := range manifest.Properties {
		entry := &manifest.Properties[i]
		src := files[entry.Name]
		g.Go(func() error {
			if err := m.upload(gctx, manifest.ID, entry, src); err != nil {
				return fmt.Errorf("backup: property %q: %w", entry.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (m *Manager) upload(ctx context.Context, id string, entry *PropertyEntry, src string) error {
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Never flushed: nothing to copy.
			return nil
		}
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	entry.RawSize = fi.Size()
	entry.Elements = elementCount(entry.Type, fi.Size())

	rc := m.opts.controller
	if err := rc.AcquireBackground(ctx); err != nil {
		return err
	}
	defer rc.ReleaseBackground()

	buf, release, err := m.buffer(ctx)
	if err != nil {
		return err
	}
	defer release()

	name := objectName(id, entry.Name, m.opts.compression)
	w, err := m.store.Create(ctx, name)
	if err != nil {
		return err
	}

	cw := &countingWriter{w: w}
	zw, err := m.opts.compression.compressor(cw)
	if err != nil {
		_ = blobstore.Abort(w)
		return err
	}

	_, err = io.CopyBuffer(zw, resource.NewRateLimitedReader(ctx, f, rc), buf)
	if closeErr := zw.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = blobstore.Abort(w)
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	entry.Object = name
	entry.StoredSize = cw.n
	return nil
}

// buffer reserves a copy buffer against the controller's memory budget.
func (m *Manager) buffer(ctx context.Context) ([]byte, func(), error) {
	size := int64(m.opts.bufferSize)
	rc := m.opts.controller
	if err := rc.AcquireMemory(ctx, size); err != nil {
		return nil, nil, err
	}
	return make([]byte, size), func() { rc.ReleaseMemory(size) }, nil
}

func (m *Manager) putEncoded(ctx context.Context, name string, v any, ifAbsent bool) error {
	data, err := m.opts.codec.Marshal(v)
	if err != nil {
		return err
	}
	if ifAbsent {
		return blobstore.PutIfAbsent(ctx, m.store, name, data)
	}
	return m.store.Put(ctx, name, data)
}

// cleanup removes the objects of a failed backup. Errors are logged only.
func (m *Manager) cleanup(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := m.deleteObjects(ctx, id); err != nil {
		m.opts.logger.Warn("backup cleanup failed", "backup_id", id, "error", err)
	}
}

func (m *Manager) deleteObjects(ctx context.Context, id string) error {
	names, err := m.store.List(ctx, id+"/")
	if err != nil {
		return err
	}
	var errs []error
	for _, name := range names {
		if err := m.store.Delete(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns the ids of all complete backups, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	names, err := m.store.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, name := range names {
		dir, file := path.Split(name)
		if file != ManifestFileName || dir == "" || strings.Count(dir, "/") != 1 {
			continue
		}
		ids = append(ids, strings.TrimSuffix(dir, "/"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Load reads the manifest of a backup.
func (m *Manager) Load(ctx context.Context, id string) (*Manifest, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	data, err := blobstore.ReadAll(ctx, m.store, manifestName(id))
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
		}
		return nil, err
	}

	manifest := &Manifest{}
	if err := m.opts.codec.Unmarshal(data, manifest); err != nil {
		return nil, fmt.Errorf("backup: decode manifest %s: %w", id, err)
	}
	if manifest.Version != manifestVersion {
		return nil, fmt.Errorf("backup: unsupported manifest version %d", manifest.Version)
	}
	if err := manifest.validate(id); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Delete removes a backup. The manifest goes first so a partially deleted
// backup is no longer listed.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.Load(ctx, id); err != nil && !errors.Is(err, ErrInvalidManifest) {
		return err
	}
	if err := m.store.Delete(ctx, manifestName(id)); err != nil {
		return err
	}
	return m.deleteObjects(ctx, id)
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("%w: invalid id %q", ErrBackupNotFound, id)
	}
	return nil
}

func elementCount(pt proptable.PropertyType, size int64) int64 {
	kind, err := pt.StorageKind()
	if err != nil || size < proptable.HeaderSize {
		return 0
	}
	return (size - proptable.HeaderSize) / int64(kind.Size())
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
