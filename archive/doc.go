// Package archive persists snapshot objects behind a small storage
// abstraction.
//
// Store is the only contract analyses and the facade care about: open,
// create, put, delete, list. Backends differ in durability and transport:
//
//   - MemoryStore: map-backed, for tests and ephemeral pipelines
//   - LocalStore: filesystem with zero-copy mmap reads and atomic renames
//   - s3.Store: Amazon S3 with range reads and multipart streaming uploads
//   - minio.Store: MinIO and other S3-compatible endpoints
//
// Missing objects surface as ErrNotFound regardless of backend. Blobs
// support random access via io.ReaderAt; backends that can expose their
// bytes without copying additionally implement Mappable.
package archive
