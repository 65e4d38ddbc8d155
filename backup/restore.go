package backup

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/proptable/blobstore"
	"github.com/hupe1980/proptable/catalog"
	ifs "github.com/hupe1980/proptable/internal/fs"
	"github.com/hupe1980/proptable/resource"
)

// Restore downloads backup id into dir. The directory can then be opened with
// catalog.Open. Existing table files in dir are replaced; the schema is
// written last.
func (m *Manager) Restore(ctx context.Context, id, dir string) (err error) {
	defer func() { m.opts.logger.LogRestore(ctx, id, dir, err) }()

	manifest, err := m.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := ifs.Default.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.concurrency)

	for _, entry := range manifest.Properties {
		if entry.Object == "" {
			continue
		}
		g.Go(func() error {
			if err := m.download(gctx, manifest.Compression, entry, catalog.TablePath(dir, entry.Name)); err != nil {
				return fmt.Errorf("restore: property %q: %w", entry.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	schema, err := blobstore.ReadAll(ctx, m.store, schemaName(id))
	if err != nil {
		return fmt.Errorf("restore: schema: %w", err)
	}
	if _, err := catalog.DecodeSchema(schema, m.opts.codec); err != nil {
		return err
	}
	if _, err := ifs.WriteFileAtomic(ifs.Default, filepath.Join(dir, catalog.SchemaFileName), 0o644, func(w io.Writer) error {
		_, err := w.Write(schema)
		return err
	}); err != nil {
		return err
	}

	m.opts.logger.DebugContext(ctx, "restore downloaded",
		"backup_id", id,
		"raw_bytes", manifest.TotalRawSize(),
		"elapsed", time.Since(start),
	)
	return nil
}

func (m *Manager) download(ctx context.Context, c Compression, entry PropertyEntry, dst string) error {
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

	blob, err := m.store.Open(ctx, entry.Object)
	if err != nil {
		return err
	}
	defer blob.Close()

	body, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return err
	}
	defer body.Close()

	zr, err := c.decompressor(resource.NewRateLimitedReader(ctx, body, rc))
	if err != nil {
		return err
	}
	defer zr.Close()

	_, err = ifs.WriteFileAtomic(ifs.Default, dst, 0o644, func(w io.Writer) error {
		n, err := io.CopyBuffer(w, zr, buf)
		if err != nil {
			return err
		}
		if n != entry.RawSize {
			return fmt.Errorf("%w: got %d bytes, want %d", ErrSizeMismatch, n, entry.RawSize)
		}
		return nil
	})
	return err
}
