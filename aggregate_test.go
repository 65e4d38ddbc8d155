package proptable

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/proptable/testutil"
)

func TestMinMax_AllSentinel(t *testing.T) {
	tbl := New[float32](Float)
	tbl.Resize(10)

	_, ok := tbl.Min()
	assert.False(t, ok)
	_, ok = tbl.Max()
	assert.False(t, ok)

	empty := New[int32](Int32)
	empty.Resize(0)
	_, ok = empty.MinValue()
	assert.False(t, ok)
	_, ok = empty.MaxValue()
	assert.False(t, ok)
}

func TestMinMax_IgnoresSentinel(t *testing.T) {
	values := []int32{40, -3, 17, 250, 0, 99}

	for seed := int64(0); seed < 5; seed++ {
		rng := rand.New(rand.NewSource(seed))
		perm := rng.Perm(len(values))

		tbl := New[int32](Int32)
		tbl.Resize(20)
		for i, p := range perm {
			tbl.SetInt32(p*3+1, values[i])
		}

		lo, ok := tbl.MinValue()
		require.True(t, ok)
		assert.Equal(t, int32(-3), lo)

		hi, ok := tbl.MaxValue()
		require.True(t, ok)
		assert.Equal(t, int32(250), hi)

		f, ok := tbl.Min()
		require.True(t, ok)
		assert.Equal(t, float32(-3), f)
		f, ok = tbl.Max()
		require.True(t, ok)
		assert.Equal(t, float32(250), f)
	}
}

func TestMinMax_ExplicitSentinelBelowValues(t *testing.T) {
	tbl := NewWithInvalid[int64](Int64, -1)
	tbl.SetInt64(2, 10)
	tbl.SetInt64(5, 3)

	lo, ok := tbl.MinValue()
	require.True(t, ok)
	assert.Equal(t, int64(3), lo)

	hi, ok := tbl.MaxValue()
	require.True(t, ok)
	assert.Equal(t, int64(10), hi)
}

func TestCompare(t *testing.T) {
	tbl := New[float64](Double)
	tbl.SetFloat64(0, 1.5)
	tbl.SetFloat64(1, 2.5)
	tbl.SetFloat64(3, 1.5)
	// position 2 and 4 are absent, 100 is out of range

	assert.Equal(t, -1, tbl.Compare(0, 1))
	assert.Equal(t, 1, tbl.Compare(1, 0))
	assert.Equal(t, 0, tbl.Compare(0, 3))

	assert.Equal(t, -1, tbl.Compare(2, 0))
	assert.Equal(t, 1, tbl.Compare(0, 2))
	assert.Equal(t, -1, tbl.Compare(100, 1))
	assert.Equal(t, 1, tbl.Compare(1, 100))

	assert.Equal(t, 0, tbl.Compare(2, 4))
	assert.Equal(t, 0, tbl.Compare(2, 100))
}

func TestSortPositions(t *testing.T) {
	tbl := New[int32](Int32)
	tbl.SetInt32(0, 30)
	tbl.SetInt32(1, 10)
	tbl.SetInt32(3, 20)
	// 2 is absent

	positions := []uint32{0, 1, 2, 3}
	tbl.SortPositions(positions, false)
	assert.Equal(t, []uint32{2, 1, 3, 0}, positions)

	tbl.SortPositions(positions, true)
	assert.Equal(t, []uint32{0, 3, 1, 2}, positions)
}

func TestValidBitmapAndFilter(t *testing.T) {
	tbl := New[float32](Float)
	for pos, v := range map[int]float32{1: 5, 2: 15, 4: 25, 7: 10} {
		tbl.SetFloat32(pos, v)
	}

	valid := tbl.ValidBitmap()
	assert.Equal(t, []uint32{1, 2, 4, 7}, valid.ToArray())
	assert.Equal(t, 4, tbl.ValidCount())

	assert.Equal(t, []uint32{2, 7}, tbl.Filter(10, 20).ToArray())
	assert.Equal(t, []uint32{1, 2, 4, 7}, tbl.Filter(0, 100).ToArray())
	assert.True(t, tbl.Filter(20, 10).IsEmpty())

	assert.Equal(t, []uint32{2, 4}, tbl.FilterFloat64(12.5, 30).ToArray())
	assert.True(t, tbl.FilterFloat64(30, 12.5).IsEmpty())
}

func TestFilter_SentinelNeverMatches(t *testing.T) {
	tbl := New[uint8](Unknown)
	tbl.Set(0, 1)
	tbl.Resize(4)

	// The default sentinel (255) lies inside the range but must not match.
	assert.Equal(t, []uint32{0}, tbl.Filter(0, 255).ToArray())
}

func TestFilterFloat64_MatchesExactRange(t *testing.T) {
	tables := map[string]func() PropertyTable{
		"int8":    func() PropertyTable { return New[int8](Int8) },
		"int16":   func() PropertyTable { return New[int16](Int16) },
		"int32":   func() PropertyTable { return New[int32](Int32) },
		"int64":   func() PropertyTable { return New[int64](Int64) },
		"uint8":   func() PropertyTable { return New[uint8](Unknown) },
		"uint16":  func() PropertyTable { return New[uint16](Unknown) },
		"uint32":  func() PropertyTable { return New[uint32](Uint32) },
		"uint64":  func() PropertyTable { return New[uint64](Uint64) },
		"float32": func() PropertyTable { return New[float32](Float) },
		"float64": func() PropertyTable { return New[float64](Double) },
	}

	for name, mk := range tables {
		t.Run(name, func(t *testing.T) {
			rng := testutil.NewRNG(42)
			col := rng.SparseColumn(2000, 0.4, 0, 120)

			tbl := mk()
			tbl.Resize(len(col))
			for pos, c := range col {
				if c.Set {
					tbl.SetFloat64(pos, c.Value)
				}
			}

			for _, r := range [][2]float64{{0, 120}, {10.5, 60}, {100, 100}, {121, 500}} {
				want := testutil.ExactRange(col, r[0], r[1])
				assert.Equal(t, want, tbl.FilterFloat64(r[0], r[1]).ToArray(), "range %v", r)
			}

			lo, hi, ok := testutil.Extremes(col)
			require.True(t, ok)
			gotLo, ok := tbl.Min()
			require.True(t, ok)
			gotHi, _ := tbl.Max()
			assert.Equal(t, float32(lo), gotLo)
			assert.Equal(t, float32(hi), gotHi)
		})
	}
}
