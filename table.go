package proptable

import (
	"sync"
)

// Table is a position-indexed column of scalar values for one document
// property.
//
// Positions are dense internal document ids. A position is valid when it is in
// range and does not hold the sentinel value, so absence needs no separate
// bitmap. The backing slice only grows, except when a file is loaded.
//
// Table is safe for concurrent use. Read methods are promoted from the
// embedded locking Reader; NoLock returns a Reader that skips the lock.
type Table[T Scalar] struct {
	Reader[T]

	mu           sync.RWMutex
	flushMu      sync.Mutex // serializes Flush calls
	propertyType PropertyType
	kind         Kind
	invalid      T
	values       []T
	dirty        bool
	path         string

	fmtr formatter
	opts options
}

// New creates a table whose sentinel is the maximum value of T.
func New[T Scalar](propertyType PropertyType, optFns ...Option) *Table[T] {
	return NewWithInvalid(propertyType, maxValue[T](), optFns...)
}

// NewWithInvalid creates a table with an explicit sentinel value.
// The sentinel cannot be changed later.
func NewWithInvalid[T Scalar](propertyType PropertyType, invalid T, optFns ...Option) *Table[T] {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	kind := KindOf[T]()
	t := &Table[T]{
		propertyType: propertyType,
		kind:         kind,
		invalid:      invalid,
		values:       []T{invalid},
		fmtr: formatter{
			kind:     kind,
			datetime: propertyType == Datetime,
			loc:      opts.location,
		},
		opts: opts,
	}
	t.Reader = Reader[T]{t: t, lock: true}
	return t
}

// NoLock returns a read view that does not acquire the table lock.
// The caller must guarantee that no writer runs concurrently.
func (t *Table[T]) NoLock() Reader[T] {
	return Reader[T]{t: t, lock: false}
}

// Type returns the logical property type.
func (t *Table[T]) Type() PropertyType { return t.propertyType }

// Kind returns the storage kind.
func (t *Table[T]) Kind() Kind { return t.kind }

// InvalidValue returns the sentinel marking absent positions.
func (t *Table[T]) InvalidValue() T { return t.invalid }

// Path returns the backing file path, or "" for in-memory tables.
func (t *Table[T]) Path() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.path
}

// Dirty reports whether the table has mutations not yet flushed.
func (t *Table[T]) Dirty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dirty
}

// Resize sets the length of the table, filling new slots with the sentinel.
func (t *Table[T]) Resize(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resizeLocked(n)
	t.dirty = true
}

func (t *Table[T]) resizeLocked(n int) {
	if n < 0 {
		n = 0
	}
	if n <= len(t.values) {
		t.values = t.values[:n]
		return
	}
	old := len(t.values)
	if n <= cap(t.values) {
		t.values = t.values[:n]
	} else {
		grown := make([]T, n, growCap(old, n))
		copy(grown, t.values)
		t.values = grown
	}
	for i := old; i < n; i++ {
		t.values[i] = t.invalid
	}
}

// growCap amortizes growth for sequential appends by position.
func growCap(old, need int) int {
	c := old * 2
	if c < need {
		c = need
	}
	return c
}

// ensureLocked grows the table so that pos is addressable.
// Must be called with the write lock held.
func (t *Table[T]) ensureLocked(pos int) {
	if pos >= len(t.values) {
		t.resizeLocked(pos + 1)
	}
}

// Set stores v at pos, growing the table if needed.
//
// Storing the sentinel makes the position absent.
func (t *Table[T]) Set(pos int, v T) {
	if pos < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLocked(pos)
	t.values[pos] = v
	t.dirty = true
}

// SetInt32 stores v converted to T.
func (t *Table[T]) SetInt32(pos int, v int32) { t.Set(pos, T(v)) }

// SetInt64 stores v converted to T.
func (t *Table[T]) SetInt64(pos int, v int64) { t.Set(pos, T(v)) }

// SetFloat32 stores v converted to T.
func (t *Table[T]) SetFloat32(pos int, v float32) { t.Set(pos, T(v)) }

// SetFloat64 stores v converted to T.
func (t *Table[T]) SetFloat64(pos int, v float64) { t.Set(pos, T(v)) }

// SetString parses s and stores the result at pos.
//
// The table is grown to cover pos before parsing. On a parse failure the
// stored value is left untouched and an error matching ErrInvalidConversion
// is returned.
func (t *Table[T]) SetString(pos int, s string) error {
	if pos < 0 {
		return &ConversionError{Kind: t.kind, Input: s, Err: ErrInvalidPosition}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ensureLocked(pos)

	v, err := parseScalar[T](t.kind, s)
	if err != nil {
		t.opts.metricsCollector.RecordConversionError()
		return err
	}
	t.values[pos] = v
	t.dirty = true
	return nil
}

// Copy copies the value at from to to. It is a no-op when from is absent.
func (t *Table[T]) Copy(from, to int) {
	if to < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if from < 0 || from >= len(t.values) || t.values[from] == t.invalid {
		return
	}
	t.ensureLocked(to)
	t.values[to] = t.values[from]
	t.dirty = true
}

// Clear resets pos to the sentinel. Out of range positions are ignored.
func (t *Table[T]) Clear(pos int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if pos >= 0 && pos < len(t.values) {
		t.values[pos] = t.invalid
		t.dirty = true
	}
}

// Values returns the backing slice without copying.
//
// The slice is replaced when the table grows or loads, and writers mutate it
// in place; callers must provide their own synchronization.
func (t *Table[T]) Values() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.values
}

// Bytes returns the backing slice as raw native-endian bytes without copying.
// The same caveats as Values apply.
func (t *Table[T]) Bytes() []byte {
	return asBytes(t.Values())
}
