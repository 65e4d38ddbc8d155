// Package proptable provides typed numeric property columns for search engines.
//
// A Table holds one scalar value per document position for a single property
// such as "price", "timestamp" or "latitude". It is the storage primitive behind
// sorting, range filtering and faceted grouping: the search layer resolves a
// property name to a table and a document to its position, then reads.
//
// # Quick Start
//
//	price := proptable.New[float32](proptable.Float)
//	price.SetFloat32(42, 19.99)
//
//	v, ok := price.GetFloat32(42)    // 19.99, true
//	s, _ := price.GetString(42)      // "19.99"
//	_, ok = price.GetFloat32(7)      // 0, false (never written)
//
// # Absent Values
//
// Every table reserves a sentinel value (the maximum of T unless one is given
// to NewWithInvalid). Positions holding the sentinel, and positions past the
// end, are absent: getters report false, Min/Max skip them, and Compare orders
// them before present values.
//
// # Concurrency
//
// Each table has one reader-writer lock. Getters and aggregates share it,
// setters and resizes take it exclusively. Setters grow the table to cover the
// position they write. Callers that guarantee exclusive access can read
// through Table.NoLock to skip locking.
//
// # Persistence
//
// Persistence is explicit:
//
//	t := proptable.New[int64](proptable.Datetime)
//	_ = t.Init("data/timestamp.ptb") // loads if the file exists
//	t.SetInt64(0, time.Now().Unix())
//	_ = t.Flush()                    // writes only when dirty
//
// The file is an 8 byte element count followed by the raw elements, both in
// native byte order. Mutations after the last Flush are lost on crash.
//
// Package catalog groups the tables of an index segment, and package backup
// copies a catalog to blob storage.
package proptable
