// Package blobstore provides the storage abstraction used for off-host copies
// of property tables.
//
// BlobStore is the interface for reading and writing named blobs. Backups write
// one compressed blob per table plus a manifest.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with mmap reads and atomic writes
//   - s3.Store: Amazon S3 with range reads and streamed multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Create(ctx, name) (WritableBlob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
