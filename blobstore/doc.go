// Package blobstore provides the storage abstraction that archive snapshots
// of record stores are written to.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local filesystem
//   - MemoryStore: in-memory, for tests
//   - minio.Store: MinIO and other S3-compatible services
//   - s3.Store: Amazon S3 through aws-sdk-go-v2
//
// # Custom Implementations
//
// Implement the BlobStore interface to support other backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)            // stream a blob
//	    Create(ctx, name) (WritableBlob, error)  // stream a new blob
//	    Put(ctx, name, data) error               // atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// A blob written through Create only becomes visible when Close returns
// nil. Abort discards it.
package blobstore
