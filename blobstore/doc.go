// Package blobstore provides storage abstraction for pak artifacts.
//
// Store is the interface for reading and writing immutable data blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap support
//   - MemoryStore: in-memory store for testing
//   - CompressedStore: transparent compression wrapper (zstd, lz4)
//   - CachingStore: local disk cache in front of a remote store
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3 with managed multipart uploads
//
// # Custom Implementations
//
// Implement the Store interface to support custom storage backends:
//
//	type Store interface {
//	    Open(ctx, name) (Blob, error)  // Open for reading
//	    Put(ctx, name, data) error     // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Blobs are immutable once Put returns. For zero-copy access, implement
// Mappable on the returned Blob:
//
//	type Mappable interface {
//	    Bytes() ([]byte, error)
//	}
package blobstore
