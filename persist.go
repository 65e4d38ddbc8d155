package proptable

import (
	"context"
	"encoding/binary"
	"io"
	"os"
	"slices"
	"time"

	"github.com/hupe1980/proptable/internal/conv"
	"github.com/hupe1980/proptable/internal/fs"
	"github.com/hupe1980/proptable/internal/mmap"
)

// HeaderSize is the size of the element count that prefixes a table file.
//
// A table file is the count as a native-endian uint64 followed by the raw
// native-endian elements in position order. There is no magic number or
// version; producer and consumer must share scalar width and byte order.
const HeaderSize = 8

// Init binds the table to path and loads the file if it exists.
//
// A missing file is not an error: the table keeps its in-memory state and the
// file is created by the next Flush. If the file exists but cannot be read or
// is malformed, the error is returned and the in-memory state is unchanged.
func (t *Table[T]) Init(path string) error {
	t.mu.Lock()
	t.path = path
	t.mu.Unlock()

	if path == "" {
		return nil
	}

	exists, err := fs.Exists(t.opts.fs, path)
	if err != nil || !exists {
		return err
	}
	return t.load(path)
}

func (t *Table[T]) load(path string) error {
	start := time.Now()
	values, err := readTableFile[T](t.opts.fs, path)
	t.opts.metricsCollector.RecordLoad(len(values), time.Since(start), err)
	t.opts.logger.LogLoad(context.Background(), path, len(values), err)
	if err != nil {
		return err
	}

	t.mu.Lock()
	t.values = values
	t.dirty = false
	t.mu.Unlock()
	return nil
}

// Flush persists the table if it has unflushed mutations.
//
// Flush first releases spare capacity of the backing slice. With a path
// configured, the table is written to a temporary file that replaces path
// once it is synced. If writing fails the table stays dirty, so a later
// Flush retries; the error is returned. Without a path Flush only compacts
// and clears the dirty flag. Concurrent Flush calls run one at a time.
func (t *Table[T]) Flush() error {
	t.flushMu.Lock()
	defer t.flushMu.Unlock()

	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return nil
	}
	if cap(t.values) > len(t.values) {
		t.values = slices.Clone(t.values)
	}
	t.dirty = false
	path := t.path
	t.mu.Unlock()

	if path == "" {
		return nil
	}

	start := time.Now()

	t.mu.RLock()
	n := len(t.values)
	written, err := fs.WriteFileAtomic(t.opts.fs, path, 0o644, func(w io.Writer) error {
		return writeTable(w, t.values)
	})
	t.mu.RUnlock()

	elapsed := time.Since(start)
	t.opts.metricsCollector.RecordFlush(written, elapsed, err)
	t.opts.logger.LogFlush(context.Background(), path, n, elapsed, err)

	if err != nil {
		t.mu.Lock()
		t.dirty = true
		t.mu.Unlock()
		return err
	}
	return nil
}

func writeTable[T Scalar](w io.Writer, values []T) error {
	count, err := conv.IntToUint64(len(values))
	if err != nil {
		return err
	}
	var header [HeaderSize]byte
	binary.NativeEndian.PutUint64(header[:], count)
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(asBytes(values))
	return err
}

// readTableFile decodes the table file at path. Files on the local file
// system are memory mapped; other file systems are read through fsys.
func readTableFile[T Scalar](fsys fs.FileSystem, path string) ([]T, error) {
	if _, ok := fsys.(fs.LocalFS); ok {
		return mapTableFile[T](path)
	}

	f, err := fsys.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size < HeaderSize {
		return nil, &CorruptFileError{Path: path, Size: size, Expected: HeaderSize}
	}

	var header [HeaderSize]byte
	if _, err := f.ReadAt(header[:], 0); err != nil {
		return nil, err
	}
	n, _, err := tableLength[T](path, header[:], size)
	if err != nil {
		return nil, err
	}

	values := make([]T, n)
	if n == 0 {
		return values, nil
	}
	if _, err := f.ReadAt(asBytes(values), HeaderSize); err != nil {
		return nil, err
	}
	return values, nil
}

// mapTableFile maps path and copies its elements into a new slice.
func mapTableFile[T Scalar](path string) ([]T, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	size := int64(m.Size())
	if size < HeaderSize {
		return nil, &CorruptFileError{Path: path, Size: size, Expected: HeaderSize}
	}
	_ = m.Advise(mmap.AccessSequential)

	n, payload, err := tableLength[T](path, m.Bytes()[:HeaderSize], size)
	if err != nil {
		return nil, err
	}

	values := make([]T, n)
	if n == 0 {
		return values, nil
	}

	region, err := m.Region(HeaderSize, int(payload))
	if err != nil {
		return nil, err
	}
	copy(asBytes(values), region.Bytes())
	return values, nil
}

// tableLength decodes the element count in header and checks it against the
// file size. It returns the count and the payload size in bytes.
func tableLength[T Scalar](path string, header []byte, size int64) (int, int64, error) {
	count := binary.NativeEndian.Uint64(header)
	elemSize := int64(KindOf[T]().Size())

	n, err := conv.Uint64ToInt(count)
	if err != nil {
		return 0, 0, &CorruptFileError{Path: path, Count: count, Size: size}
	}
	payload, err := conv.MulInt64(int64(n), elemSize)
	if err != nil || payload != size-HeaderSize {
		return 0, 0, &CorruptFileError{Path: path, Count: count, Size: size, Expected: HeaderSize + payload}
	}
	return n, payload, nil
}

// ReadFile decodes a table file into a slice without creating a Table.
// It is used by tooling that inspects files offline.
func ReadFile[T Scalar](path string) ([]T, error) {
	return readTableFile[T](fs.Default, path)
}
