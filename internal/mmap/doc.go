// Package mmap provides read-only memory-mapped file access.
//
// Table files are loaded by mapping them, hinting a sequential scan, and
// copying the payload region into a Go-owned slice in one pass. The local
// blob store serves reads straight from a mapping.
//
// # Usage
//
//	m, err := mmap.Open("price.ptb")
//	if err != nil { ... }
//	defer m.Close()
//
//	_ = m.Advise(mmap.AccessSequential)
//	payload, _ := m.Region(8, m.Size()-8)
//	copy(dst, payload.Bytes())
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) access hints
//   - Windows: CreateFileMapping/MapViewOfFile (advice is a no-op)
//
// Mapping and Region are safe for concurrent reads. Close is idempotent;
// callers must not touch Bytes() after Close returns.
package mmap
