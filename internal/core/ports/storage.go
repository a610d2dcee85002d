package ports

import (
	"context"
	"io"
)

// BlobStore abstracts where file bytes live (local filesystem, MinIO).
// Keys are opaque strings chosen by the caller.
type BlobStore interface {
	// Put streams r to storage under key. size may be -1 when unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens the blob for reading. The caller must close the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
