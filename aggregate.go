package proptable

import (
	"math"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// MinValue returns the smallest valid value. The sentinel never wins, so the
// result is absent only when the table is empty or holds no valid value.
func (r Reader[T]) MinValue() (T, bool) {
	defer r.rlock()()
	return r.extreme(func(a, b T) bool { return a < b })
}

// MaxValue returns the largest valid value.
func (r Reader[T]) MaxValue() (T, bool) {
	defer r.rlock()()
	return r.extreme(func(a, b T) bool { return a > b })
}

// Min returns the smallest valid value as float32.
func (r Reader[T]) Min() (float32, bool) {
	v, ok := r.MinValue()
	return float32(v), ok
}

// Max returns the largest valid value as float32.
func (r Reader[T]) Max() (float32, bool) {
	v, ok := r.MaxValue()
	return float32(v), ok
}

// extreme scans valid values and keeps the one preferred by better.
func (r Reader[T]) extreme(better func(a, b T) bool) (T, bool) {
	var (
		best  T
		found bool
	)
	invalid := r.t.invalid
	for _, v := range r.t.values {
		if v == invalid {
			continue
		}
		if !found || better(v, best) {
			best = v
			found = true
		}
	}
	return best, found
}

// ValidCount returns the number of positions holding a value.
func (r Reader[T]) ValidCount() int {
	defer r.rlock()()
	n := 0
	for _, v := range r.t.values {
		if v != r.t.invalid {
			n++
		}
	}
	return n
}

// Compare orders the values at lhs and rhs.
//
// It returns -1, 0 or +1. An absent lhs orders before a present rhs and a
// present lhs orders after an absent rhs, so documents without a value end up
// at a deterministic end of any order. Two absent values compare equal.
func (r Reader[T]) Compare(lhs, rhs int) int {
	defer r.rlock()()
	return r.compare(lhs, rhs)
}

func (r Reader[T]) compare(lhs, rhs int) int {
	lv, lok := r.lookup(lhs)
	rv, rok := r.lookup(rhs)
	switch {
	case !lok && !rok:
		return 0
	case !lok:
		return -1
	case !rok:
		return 1
	case lv < rv:
		return -1
	case lv > rv:
		return 1
	default:
		return 0
	}
}

// SortPositions sorts positions by their values using the Compare order.
// The sort is stable and runs under a single read lock.
func (r Reader[T]) SortPositions(positions []uint32, descending bool) {
	defer r.rlock()()
	slices.SortStableFunc(positions, func(a, b uint32) int {
		c := r.compare(int(a), int(b))
		if descending {
			return -c
		}
		return c
	})
}

// ValidBitmap returns the set of positions that hold a value.
// Positions beyond math.MaxUint32 are not representable and are omitted.
func (r Reader[T]) ValidBitmap() *roaring.Bitmap {
	defer r.rlock()()
	return r.collect(func(T) bool { return true })
}

// Filter returns the positions whose value lies in the closed range [lo, hi].
func (r Reader[T]) Filter(lo, hi T) *roaring.Bitmap {
	defer r.rlock()()
	if hi < lo {
		return roaring.New()
	}
	return r.collect(func(v T) bool { return v >= lo && v <= hi })
}

func (r Reader[T]) collect(match func(T) bool) *roaring.Bitmap {
	bm := roaring.New()
	batch := make([]uint32, 0, 1024)
	for i, v := range r.t.values {
		if uint64(i) > math.MaxUint32 {
			break
		}
		if v == r.t.invalid || !match(v) {
			continue
		}
		batch = append(batch, uint32(i))
		if len(batch) == cap(batch) {
			bm.AddMany(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		bm.AddMany(batch)
	}
	bm.RunOptimize()
	return bm
}

// FilterFloat64 is Filter with bounds given as float64. Values are widened to
// float64 before comparison, so it works for every storage kind.
func (r Reader[T]) FilterFloat64(lo, hi float64) *roaring.Bitmap {
	defer r.rlock()()
	if hi < lo {
		return roaring.New()
	}
	return r.collect(func(v T) bool {
		f := float64(v)
		return f >= lo && f <= hi
	})
}
