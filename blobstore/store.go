// Package blobstore abstracts immutable blob storage for index snapshots.
//
// Snapshots are written once and read whole or in ranges; stores never mutate
// a blob in place. Implementations cover local disk (memory-mapped reads),
// in-memory testing, S3 and MinIO, plus caching and throttling wrappers.
package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is an abstraction for accessing immutable data blobs.
type Store interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)

	// Create creates a new blob for streaming writes.
	Create(ctx context.Context, name string) (WritableBlob, error)

	// Put writes a blob atomically.
	Put(ctx context.Context, name string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error

	// List returns all blob names with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at off.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange returns a reader over [off, off+length).
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	// Close releases the handle.
	Close() error
}

// WritableBlob is a streaming write handle. The blob becomes visible on
// Close; Abort discards it.
type WritableBlob interface {
	io.Writer

	// Close finishes the write and publishes the blob.
	Close() error

	// Abort discards the write. Safe to call after Close (no-op).
	Abort() error
}

// ReadAll reads an entire blob.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	r, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
