// Package testutil provides testing utilities for proptable.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random source for building sparse columns and a
// brute-force range filter to check bitmap results against.
//
// # Random Columns
//
//	rng := testutil.NewRNG(seed)
//	col := rng.SparseColumn(10_000, 0.3, -100, 100) // ~30% of positions set
//
// # Ground Truth
//
//	want := testutil.ExactRange(col, lo, hi)
//	assert.Equal(t, want, table.FilterFloat64(lo, hi).ToArray())
package testutil
