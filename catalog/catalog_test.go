package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/proptable"
	"github.com/hupe1980/proptable/codec"
	"github.com/hupe1980/proptable/internal/fs"
	"github.com/hupe1980/proptable/resource"
)

func TestCatalog_RegisterFlushReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cat, err := Open(dir)
	require.NoError(t, err)

	price, err := cat.Register("price", proptable.Float)
	require.NoError(t, err)
	ts, err := cat.Register("timestamp", proptable.Datetime)
	require.NoError(t, err)
	rank, err := cat.Register("rank", proptable.Int8)
	require.NoError(t, err)

	assert.Equal(t, proptable.KindFloat32, price.Kind())
	assert.Equal(t, proptable.KindInt64, ts.Kind())
	assert.Equal(t, proptable.KindInt8, rank.Kind())

	price.SetFloat32(3, 9.5)
	ts.SetInt64(0, 1700000000)
	require.NoError(t, rank.SetString(1, "-4"))

	require.NoError(t, cat.Close(ctx))
	assert.False(t, price.Dirty())
	assert.FileExists(t, filepath.Join(dir, "price.ptb"))
	assert.FileExists(t, filepath.Join(dir, SchemaFileName))

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"price", "rank", "timestamp"}, reopened.Names())

	p, ok := reopened.Table("price")
	require.True(t, ok)
	v, ok := p.GetFloat32(3)
	require.True(t, ok)
	assert.Equal(t, float32(9.5), v)

	r, _ := reopened.Table("rank")
	i, ok := r.GetInt32(1)
	require.True(t, ok)
	assert.Equal(t, int32(-4), i)

	pt, ok := reopened.Type("timestamp")
	require.True(t, ok)
	assert.Equal(t, proptable.Datetime, pt)
}

func TestCatalog_RegisterErrors(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = cat.Register("price", proptable.Double)
	require.NoError(t, err)

	_, err = cat.Register("price", proptable.Double)
	assert.ErrorIs(t, err, ErrPropertyExists)

	for _, name := range []string{"", "a/b", "..", SchemaFileName} {
		_, err = cat.Register(name, proptable.Int32)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
	}

	_, err = cat.Register("blob", proptable.Unknown)
	assert.ErrorIs(t, err, proptable.ErrUnsupportedPropertyType)
	assert.Equal(t, []string{"price"}, cat.Names())
}

func TestCatalog_Drop(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cat, err := Open(dir)
	require.NoError(t, err)
	tbl, err := cat.Register("views", proptable.Uint64)
	require.NoError(t, err)
	tbl.SetInt64(0, 10)
	require.NoError(t, cat.Flush(ctx))
	require.FileExists(t, tbl.Path())

	require.NoError(t, cat.Drop("views"))
	assert.NoFileExists(t, tbl.Path())
	assert.Empty(t, cat.Names())
	assert.ErrorIs(t, cat.Drop("views"), ErrPropertyNotFound)

	reopened, err := Open(dir)
	require.NoError(t, err)
	assert.Empty(t, reopened.Names())
}

func TestCatalog_FilterRangeAndCompare(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)

	lat, err := cat.Register("lat", proptable.Double)
	require.NoError(t, err)
	lat.SetFloat64(0, 52.5)
	lat.SetFloat64(1, 48.1)
	lat.SetFloat64(2, -33.9)

	bm, err := cat.FilterRange("lat", 40, 60)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1}, bm.ToArray())

	cmp, err := cat.Compare("lat", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	_, err = cat.FilterRange("lon", 0, 1)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
	_, err = cat.Compare("lon", 0, 1)
	assert.ErrorIs(t, err, ErrPropertyNotFound)
}

func TestCatalog_Stats(t *testing.T) {
	cat, err := Open(t.TempDir())
	require.NoError(t, err)

	score, err := cat.Register("score", proptable.Int32)
	require.NoError(t, err)
	score.SetInt32(4, 7)
	score.SetInt32(1, -2)
	_, err = cat.Register("empty", proptable.Float)
	require.NoError(t, err)

	stats := cat.Stats()
	require.Len(t, stats, 2)

	assert.Equal(t, "empty", stats[0].Name)
	assert.False(t, stats[0].HasRange)
	assert.Equal(t, 0, stats[0].Valid)

	assert.Equal(t, "score", stats[1].Name)
	assert.Equal(t, proptable.Int32, stats[1].Type)
	assert.Equal(t, 5, stats[1].Size)
	assert.Equal(t, 2, stats[1].Valid)
	assert.True(t, stats[1].Dirty)
	assert.True(t, stats[1].HasRange)
	assert.Equal(t, float32(-2), stats[1].Min)
	assert.Equal(t, float32(7), stats[1].Max)

	files := cat.Files()
	assert.Equal(t, TablePath(cat.Dir(), "score"), files["score"])
}

func TestCatalog_FlushCollectsErrors(t *testing.T) {
	ctx := context.Background()
	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("bad.ptb", fs.Fault{FailAfterBytes: -1, FailOnSync: true})

	cat, err := Open(t.TempDir(),
		WithTableOptions(proptable.WithFileSystem(ffs)),
		WithController(resource.NewController(resource.Config{MaxBackgroundWorkers: 2})),
	)
	require.NoError(t, err)

	good, err := cat.Register("good", proptable.Int32)
	require.NoError(t, err)
	bad, err := cat.Register("bad", proptable.Int32)
	require.NoError(t, err)
	good.SetInt32(0, 1)
	bad.SetInt32(0, 1)

	err = cat.Flush(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Contains(t, err.Error(), `"bad"`)

	assert.False(t, good.Dirty())
	assert.True(t, bad.Dirty())

	ffs.ClearRules()
	require.NoError(t, cat.Flush(ctx))
	assert.False(t, bad.Dirty())
}

func TestCatalog_SchemaWriteFailureRollsBack(t *testing.T) {
	ffs := fs.NewFaultyFS(nil)
	cat, err := Open(t.TempDir(), withFileSystem(ffs))
	require.NoError(t, err)

	ffs.AddRule(SchemaFileName, fs.Fault{FailAfterBytes: -1, FailOnRename: true})
	_, err = cat.Register("price", proptable.Float)
	assert.ErrorIs(t, err, fs.ErrInjected)

	_, ok := cat.Table("price")
	assert.False(t, ok)
	_, ok = cat.Type("price")
	assert.False(t, ok)
}

func TestCatalog_Closed(t *testing.T) {
	ctx := context.Background()
	cat, err := Open(t.TempDir())
	require.NoError(t, err)
	_, err = cat.Register("a", proptable.Int64)
	require.NoError(t, err)

	require.NoError(t, cat.Close(ctx))

	assert.ErrorIs(t, cat.Close(ctx), ErrClosed)
	assert.ErrorIs(t, cat.Flush(ctx), ErrClosed)
	assert.ErrorIs(t, cat.Drop("a"), ErrClosed)
	_, err = cat.Register("b", proptable.Int64)
	assert.ErrorIs(t, err, ErrClosed)
	_, ok := cat.Table("a")
	assert.False(t, ok)
	_, err = cat.FilterRange("a", 0, 1)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = cat.Compare("a", 0, 1)
	assert.ErrorIs(t, err, ErrClosed)

	_, ok = cat.Type("a")
	assert.False(t, ok)
	assert.Empty(t, cat.Names())
	assert.Empty(t, cat.Schema().Properties)
	assert.Empty(t, cat.Files())
	assert.Empty(t, cat.Stats())
}

func TestCatalog_SchemaReadFailure(t *testing.T) {
	dir := t.TempDir()
	cat, err := Open(dir)
	require.NoError(t, err)
	_, err = cat.Register("price", proptable.Float)
	require.NoError(t, err)
	require.NoError(t, cat.Close(context.Background()))

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(SchemaFileName, fs.Fault{FailAfterBytes: -1, FailOnRead: true})
	_, err = Open(dir, withFileSystem(ffs))
	assert.ErrorIs(t, err, fs.ErrInjected)

	ffs.ClearRules()
	reopened, err := Open(dir, withFileSystem(ffs))
	require.NoError(t, err)
	assert.Equal(t, []string{"price"}, reopened.Names())
}

func TestCatalog_CorruptSchema(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, SchemaFileName), []byte(`{"version":1,"properties":{"x":"text"}}`), 0o644))
	_, err := Open(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, SchemaFileName), []byte(`{"version":2,"properties":{}}`), 0o644))
	_, err = Open(dir)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, SchemaFileName), []byte(`{"version":1,"properties":{"../x":"int32"}}`), 0o644))
	_, err = Open(dir)
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestCatalog_CodecInterop(t *testing.T) {
	dir := t.TempDir()

	cat, err := Open(dir, WithCodec(codec.JSONv2{}))
	require.NoError(t, err)
	_, err = cat.Register("price", proptable.Float)
	require.NoError(t, err)

	reopened, err := Open(dir, WithCodec(codec.GoJSON{}))
	require.NoError(t, err)
	assert.Equal(t, map[string]proptable.PropertyType{"price": proptable.Float}, reopened.Schema().Properties)
}
