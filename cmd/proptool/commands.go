package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/backup"
	"github.com/hupe1980/proptable/blobstore"
	"github.com/hupe1980/proptable/blobstore/minio"
	"github.com/hupe1980/proptable/blobstore/s3"
	"github.com/hupe1980/proptable/catalog"
	"github.com/hupe1980/proptable/resource"
)

var errUsage = errors.New("usage")

func run(ctx context.Context, c Config, logger *proptable.Logger, out io.Writer) error {
	switch strings.ToLower(c.Command) {
	case "inspect":
		return withCatalog(c, logger, func(cat *catalog.Catalog) error { return inspect(cat, out) })
	case "dump":
		return withCatalog(c, logger, func(cat *catalog.Catalog) error { return dump(cat, c.Property, out) })
	case "get":
		return withCatalog(c, logger, func(cat *catalog.Catalog) error { return get(cat, c.Property, c.Pos, out) })
	case "set":
		return withCatalog(c, logger, func(cat *catalog.Catalog) error { return set(cat, c.Property, c.Pos, c.Value) })
	case "register":
		return withCatalog(c, logger, func(cat *catalog.Catalog) error { return register(cat, c.Property, c.Type) })
	case "drop":
		return withCatalog(c, logger, func(cat *catalog.Catalog) error { return cat.Drop(c.Property) })
	case "backup":
		return runBackup(ctx, c, logger, out)
	case "restore":
		return runRestore(ctx, c, logger)
	case "list":
		return runList(ctx, c, logger, out)
	case "delete":
		return runDelete(ctx, c, logger)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, c.Command)
	}
}

func openCatalog(c Config, logger *proptable.Logger) (*catalog.Catalog, error) {
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, err
	}
	return catalog.Open(c.Dir,
		catalog.WithLogger(logger),
		catalog.WithTableOptions(proptable.WithLocation(loc)),
	)
}

func withCatalog(c Config, logger *proptable.Logger, fn func(*catalog.Catalog) error) error {
	cat, err := openCatalog(c, logger)
	if err != nil {
		return err
	}
	err = fn(cat)
	return errors.Join(err, cat.Close(context.Background()))
}

func inspect(cat *catalog.Catalog, out io.Writer) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROPERTY\tTYPE\tSIZE\tVALID\tMIN\tMAX")
	for _, s := range cat.Stats() {
		lo, hi := "-", "-"
		if s.HasRange {
			lo = fmt.Sprintf("%g", s.Min)
			hi = fmt.Sprintf("%g", s.Max)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", s.Name, s.Type, s.Size, s.Valid, lo, hi)
	}
	return tw.Flush()
}

func table(cat *catalog.Catalog, name string) (proptable.PropertyTable, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: -property is required", errUsage)
	}
	t, ok := cat.Table(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", catalog.ErrPropertyNotFound, name)
	}
	return t, nil
}

func dump(cat *catalog.Catalog, name string, out io.Writer) error {
	t, err := table(cat, name)
	if err != nil {
		return err
	}
	for pos := 0; pos < t.Size(); pos++ {
		if s, ok := t.GetString(pos); ok {
			if _, err := fmt.Fprintf(out, "%d\t%s\n", pos, s); err != nil {
				return err
			}
		}
	}
	return nil
}

func get(cat *catalog.Catalog, name string, pos int, out io.Writer) error {
	t, err := table(cat, name)
	if err != nil {
		return err
	}
	s, ok := t.GetString(pos)
	if !ok {
		s = "<absent>"
	}
	_, err = fmt.Fprintln(out, s)
	return err
}

func set(cat *catalog.Catalog, name string, pos int, value string) error {
	t, err := table(cat, name)
	if err != nil {
		return err
	}
	return t.SetString(pos, value)
}

func register(cat *catalog.Catalog, name, typ string) error {
	pt, err := proptable.ParsePropertyType(typ)
	if err != nil {
		return err
	}
	_, err = cat.Register(name, pt)
	return err
}

func openStore(ctx context.Context, c Config) (blobstore.BlobStore, error) {
	switch {
	case c.Endpoint != "":
		if c.Bucket == "" {
			return nil, fmt.Errorf("%w: -bucket is required with -endpoint", errUsage)
		}
		client, err := minio.NewClient(c.Endpoint, c.AccessKey, c.SecretKey, c.Secure)
		if err != nil {
			return nil, err
		}
		store := minio.NewStore(client, c.Bucket, c.Prefix)
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case c.Bucket != "":
		store, err := s3.New(ctx, c.Bucket, s3.WithPrefix(c.Prefix))
		if err != nil {
			return nil, err
		}
		return store, nil
	case c.Store != "":
		return blobstore.NewLocalStore(c.Store), nil
	default:
		return nil, fmt.Errorf("%w: one of -store, -bucket is required", errUsage)
	}
}

func newManager(ctx context.Context, c Config, logger *proptable.Logger) (*backup.Manager, error) {
	store, err := openStore(ctx, c)
	if err != nil {
		return nil, err
	}
	compression, err := backup.ParseCompression(c.Compression)
	if err != nil {
		return nil, err
	}
	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: int64(max(c.Workers, 1)),
		IOLimitBytesPerSec:   c.IOLimit,
	})
	return backup.New(store,
		backup.WithCompression(compression),
		backup.WithController(rc),
		backup.WithConcurrency(c.Workers),
		backup.WithLogger(logger),
	), nil
}

func runBackup(ctx context.Context, c Config, logger *proptable.Logger, out io.Writer) error {
	mgr, err := newManager(ctx, c, logger)
	if err != nil {
		return err
	}
	cat, err := openCatalog(c, logger)
	if err != nil {
		return err
	}
	defer cat.Close(context.Background())

	manifest, err := mgr.Backup(ctx, cat)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, manifest.ID)
	return err
}

func runRestore(ctx context.Context, c Config, logger *proptable.Logger) error {
	if c.Backup == "" {
		return fmt.Errorf("%w: -backup is required", errUsage)
	}
	mgr, err := newManager(ctx, c, logger)
	if err != nil {
		return err
	}
	return mgr.Restore(ctx, c.Backup, c.Dir)
}

func runList(ctx context.Context, c Config, logger *proptable.Logger, out io.Writer) error {
	mgr, err := newManager(ctx, c, logger)
	if err != nil {
		return err
	}
	ids, err := mgr.List(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tCOMPRESSION\tPROPERTIES\tBYTES")
	for _, id := range ids {
		m, err := mgr.Load(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\n", m.ID, m.Created.Format(time.RFC3339), m.Compression, len(m.Properties), m.TotalRawSize())
	}
	return tw.Flush()
}

func runDelete(ctx context.Context, c Config, logger *proptable.Logger) error {
	if c.Backup == "" {
		return fmt.Errorf("%w: -backup is required", errUsage)
	}
	mgr, err := newManager(ctx, c, logger)
	if err != nil {
		return err
	}
	return mgr.Delete(ctx, c.Backup)
}
