package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/blobstore"
	"github.com/hupe1980/proptable/catalog"
	"github.com/hupe1980/proptable/resource"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	cat, err := catalog.Open(t.TempDir())
	require.NoError(t, err)

	price, err := cat.Register("price", proptable.Float)
	require.NoError(t, err)
	ts, err := cat.Register("timestamp", proptable.Datetime)
	require.NoError(t, err)
	_, err = cat.Register("unused", proptable.Int16)
	require.NoError(t, err)

	for pos := 0; pos < 5000; pos++ {
		if pos%7 == 0 {
			continue
		}
		price.SetFloat32(pos, float32(pos%100)+0.5)
		ts.SetInt64(pos, 1700000000+int64(pos))
	}
	return cat
}

func TestBackupRestore(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			cat := newCatalog(t)

			mgr := New(store,
				WithCompression(c),
				WithConcurrency(2),
				WithController(resource.NewController(resource.Config{
					MaxBackgroundWorkers: 2,
					MemoryLimitBytes:     1 << 20,
				})),
			)

			manifest, err := mgr.Backup(ctx, cat)
			require.NoError(t, err)
			assert.Equal(t, c, manifest.Compression)
			require.Len(t, manifest.Properties, 3)

			price, ok := manifest.Property("price")
			require.True(t, ok)
			assert.Equal(t, proptable.Float, price.Type)
			assert.Equal(t, int64(5000), price.Elements)
			assert.Equal(t, int64(proptable.HeaderSize+5000*4), price.RawSize)
			assert.Equal(t, manifest.ID+"/price.ptb"+c.Ext(), price.Object)
			if c != CompressionNone {
				assert.Less(t, price.StoredSize, price.RawSize)
			}

			unused, ok := manifest.Property("unused")
			require.True(t, ok)
			assert.Empty(t, unused.Object)

			ids, err := mgr.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{manifest.ID}, ids)

			dir := filepath.Join(t.TempDir(), "restored")
			require.NoError(t, mgr.Restore(ctx, manifest.ID, dir))

			restored, err := catalog.Open(dir)
			require.NoError(t, err)
			assert.Equal(t, []string{"price", "timestamp", "unused"}, restored.Names())

			orig, _ := cat.Table("timestamp")
			got, ok := restored.Table("timestamp")
			require.True(t, ok)
			require.Equal(t, orig.Size(), got.Size())
			for pos := 0; pos < orig.Size(); pos++ {
				want, wantOK := orig.GetInt64(pos)
				have, haveOK := got.GetInt64(pos)
				require.Equal(t, wantOK, haveOK, "pos %d", pos)
				require.Equal(t, want, have, "pos %d", pos)
			}
			s, ok := got.GetString(1)
			require.True(t, ok)
			assert.Len(t, s, len("20231114T221321"))
		})
	}
}

func TestBackup_LocalStore(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewLocalStore(t.TempDir())
	mgr := New(store, WithCompression(CompressionLZ4))

	manifest, err := mgr.Backup(ctx, newCatalog(t))
	require.NoError(t, err)

	loaded, err := mgr.Load(ctx, manifest.ID)
	require.NoError(t, err)
	assert.Equal(t, manifest.ID, loaded.ID)
	assert.Equal(t, manifest.Properties, loaded.Properties)
	assert.True(t, manifest.Created.Equal(loaded.Created))

	dir := t.TempDir()
	require.NoError(t, mgr.Restore(ctx, manifest.ID, dir))

	values, err := proptable.ReadFile[float32](catalog.TablePath(dir, "price"))
	require.NoError(t, err)
	assert.Len(t, values, 5000)
}

func TestBackup_ListIgnoresIncomplete(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	mgr := New(store)

	require.NoError(t, store.Put(ctx, "partial/price.ptb.zst", []byte("x")))
	require.NoError(t, store.Put(ctx, "nested/deeper/"+ManifestFileName, []byte("{}")))

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBackup_NotFound(t *testing.T) {
	ctx := context.Background()
	mgr := New(blobstore.NewMemoryStore())

	_, err := mgr.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrBackupNotFound)
	assert.ErrorIs(t, mgr.Restore(ctx, "missing", t.TempDir()), ErrBackupNotFound)
	assert.ErrorIs(t, mgr.Delete(ctx, "missing"), ErrBackupNotFound)
	_, err = mgr.Load(ctx, "../etc")
	assert.ErrorIs(t, err, ErrBackupNotFound)
}

func TestBackup_Delete(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	mgr := New(store)
	cat := newCatalog(t)

	first, err := mgr.Backup(ctx, cat)
	require.NoError(t, err)
	second, err := mgr.Backup(ctx, cat)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	require.NoError(t, mgr.Delete(ctx, first.ID))

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids)

	names, err := store.List(ctx, first.ID+"/")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestBackup_FailedUploadIsCleanedUp(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := blobstore.NewMemoryStore()
	cat := newCatalog(t)
	require.NoError(t, cat.Flush(ctx))

	cancel()
	mgr := New(store, WithController(resource.NewController(resource.Config{})))
	_, err := mgr.Backup(ctx, cat)
	require.Error(t, err)

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRestore_SizeMismatch(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	mgr := New(store, WithCompression(CompressionNone))

	manifest, err := mgr.Backup(ctx, newCatalog(t))
	require.NoError(t, err)

	price, _ := manifest.Property("price")
	require.NoError(t, store.Put(ctx, price.Object, []byte("short")))

	dir := t.TempDir()
	err = mgr.Restore(ctx, manifest.ID, dir)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	_, statErr := os.Stat(catalog.TablePath(dir, "price"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, catalog.SchemaFileName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRestore_RejectsEntriesOutsideBackup(t *testing.T) {
	tests := []struct {
		name  string
		entry string
	}{
		{"parent name", `{"name":"../escaped","type":"int64","raw_size":8,"object":"evil/x.ptb"}`},
		{"nested name", `{"name":"a/b","type":"int64","raw_size":8,"object":"evil/x.ptb"}`},
		{"foreign object", `{"name":"price","type":"int64","raw_size":8,"object":"other/x.ptb"}`},
		{"dotted object", `{"name":"price","type":"int64","raw_size":8,"object":"evil/../other/x.ptb"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := blobstore.NewMemoryStore()
			mgr := New(store, WithCompression(CompressionNone))

			table := make([]byte, 8)
			for _, obj := range []string{"evil/x.ptb", "other/x.ptb"} {
				require.NoError(t, store.Put(ctx, obj, table))
			}
			require.NoError(t, store.Put(ctx, "evil/"+SchemaObjectName, []byte(`{"version":1,"properties":{}}`)))
			manifest := `{"version":1,"id":"evil","compression":"none","properties":[` + tt.entry + `]}`
			require.NoError(t, store.Put(ctx, "evil/"+ManifestFileName, []byte(manifest)))

			root := t.TempDir()
			dir := filepath.Join(root, "restore")

			err := mgr.Restore(ctx, "evil", dir)
			assert.ErrorIs(t, err, ErrInvalidManifest)

			_, statErr := os.Stat(filepath.Join(root, "escaped.ptb"))
			assert.True(t, os.IsNotExist(statErr))
			entries, _ := os.ReadDir(dir)
			assert.Empty(t, entries)

			_, err = mgr.Load(ctx, "evil")
			assert.ErrorIs(t, err, ErrInvalidManifest)

			// A rejected backup can still be deleted.
			require.NoError(t, mgr.Delete(ctx, "evil"))
			names, err := store.List(ctx, "evil/")
			require.NoError(t, err)
			assert.Empty(t, names)
		})
	}
}

func TestCompression(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want Compression
	}{
		{"", CompressionNone},
		{"none", CompressionNone},
		{"LZ4", CompressionLZ4},
		{"zst", CompressionZstd},
		{"zstd", CompressionZstd},
	} {
		got, err := ParseCompression(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)

	_, err = New(blobstore.NewMemoryStore(), WithCompression(Compression(9))).Backup(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnknownCompression)
}
