package testutil

import (
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewSource(r.seed))
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Perm returns a pseudo-random permutation of [0,n).
func (r *RNG) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Perm(n)
}

// Cell is one position of a sparse column.
type Cell struct {
	Value float64
	Set   bool
}

// SparseColumn returns n cells; each is set with probability density to an
// integer value in [minVal, maxVal]. Integer values keep the column exact in
// every storage kind.
func (r *RNG) SparseColumn(n int, density float64, minVal, maxVal int) []Cell {
	r.mu.Lock()
	defer r.mu.Unlock()

	col := make([]Cell, n)
	span := maxVal - minVal + 1
	for i := range col {
		if r.rand.Float64() < density {
			col[i] = Cell{Value: float64(minVal + r.rand.Intn(span)), Set: true}
		}
	}
	return col
}

// ExactRange returns the positions of set cells whose value lies in [lo, hi],
// ascending.
func ExactRange(col []Cell, lo, hi float64) []uint32 {
	out := []uint32{}
	for i, c := range col {
		if c.Set && c.Value >= lo && c.Value <= hi {
			out = append(out, uint32(i))
		}
	}
	return out
}

// Extremes returns the smallest and largest set value.
func Extremes(col []Cell) (lo, hi float64, ok bool) {
	for _, c := range col {
		if !c.Set {
			continue
		}
		if !ok || c.Value < lo {
			lo = c.Value
		}
		if !ok || c.Value > hi {
			hi = c.Value
		}
		ok = true
	}
	return lo, hi, ok
}
