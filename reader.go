package proptable

// Reader provides the read operations of a Table.
//
// A Reader obtained from the table itself takes the shared lock for every
// call. The Reader returned by Table.NoLock skips locking and is only safe
// while the caller guarantees exclusive access.
type Reader[T Scalar] struct {
	t    *Table[T]
	lock bool
}

func (r Reader[T]) rlock() func() {
	if !r.lock {
		return func() {}
	}
	r.t.mu.RLock()
	return r.t.mu.RUnlock
}

// lookup returns the stored value at pos if it is in range and not the
// sentinel. Caller must hold the read lock when locking is enabled.
func (r Reader[T]) lookup(pos int) (T, bool) {
	t := r.t
	if pos < 0 || pos >= len(t.values) || t.values[pos] == t.invalid {
		var zero T
		return zero, false
	}
	return t.values[pos], true
}

// Size returns the number of addressable positions.
func (r Reader[T]) Size() int {
	defer r.rlock()()
	return len(r.t.values)
}

// IsValid reports whether pos holds a value.
func (r Reader[T]) IsValid(pos int) bool {
	defer r.rlock()()
	_, ok := r.lookup(pos)
	return ok
}

// Get returns the stored value at pos.
func (r Reader[T]) Get(pos int) (T, bool) {
	defer r.rlock()()
	return r.lookup(pos)
}

// GetInt32 returns the value at pos converted to int32.
func (r Reader[T]) GetInt32(pos int) (int32, bool) {
	v, ok := r.Get(pos)
	return int32(v), ok
}

// GetInt64 returns the value at pos converted to int64.
func (r Reader[T]) GetInt64(pos int) (int64, bool) {
	v, ok := r.Get(pos)
	return int64(v), ok
}

// GetFloat32 returns the value at pos converted to float32.
func (r Reader[T]) GetFloat32(pos int) (float32, bool) {
	v, ok := r.Get(pos)
	return float32(v), ok
}

// GetFloat64 returns the value at pos converted to float64.
func (r Reader[T]) GetFloat64(pos int) (float64, bool) {
	v, ok := r.Get(pos)
	return float64(v), ok
}

// GetFloat64Pair returns the value at pos as a degenerate range whose bounds
// are equal. It exists for API parity with range-valued properties.
func (r Reader[T]) GetFloat64Pair(pos int) (low, high float64, ok bool) {
	v, ok := r.GetFloat64(pos)
	return v, v, ok
}

// GetInt64Pair returns the value at pos as a degenerate int64 range.
func (r Reader[T]) GetInt64Pair(pos int) (low, high int64, ok bool) {
	v, ok := r.GetInt64(pos)
	return v, v, ok
}

// GetString returns the display string for the value at pos.
//
// float32 values use PrecisionFloat32 decimals, float64 values use
// PrecisionFloat64 decimals, and int64 values of Datetime properties are
// rendered as ISO-8601 basic timestamps.
func (r Reader[T]) GetString(pos int) (string, bool) {
	defer r.rlock()()
	v, ok := r.lookup(pos)
	if !ok {
		return "", false
	}
	return r.t.fmtr.format(v), true
}
