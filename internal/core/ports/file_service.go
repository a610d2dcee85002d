package ports

import (
	"context"
	"io"
	"time"
)

// UploadInput carries everything needed to store one uploaded file.
type UploadInput struct {
	OwnerID     string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadResult is returned after a successful upload.
type UploadResult struct {
	FileID string
}

// FileInfo is the metadata view exposed by the list endpoint. The storage
// key deliberately never appears here.
type FileInfo struct {
	ID          string
	Filename    string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
}

// FileService defines upload and listing use cases.
type FileService interface {
	// Upload validates the content type against the allow-list before any
	// storage I/O, then persists bytes and metadata.
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
	List(ctx context.Context) ([]FileInfo, error)
}
