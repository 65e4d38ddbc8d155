// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("proptables/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	mgr := backup.New(store, backup.WithCompression(backup.Zstd))
//
// # Features
//
//   - Range reads for partial fetches
//   - Streamed multipart uploads with CRC32C checksums
//   - Conditional writes (If-None-Match) for manifests
//   - Automatic pagination for listing
package s3
