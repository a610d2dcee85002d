package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/securedocs/fileshare/internal/api/metrics"
	"github.com/securedocs/fileshare/internal/core/domain"
	"github.com/securedocs/fileshare/internal/core/ports"
)

// FileService implements upload and listing.
type FileService struct {
	files  ports.FileRepository
	blobs  ports.BlobStore
	logger zerolog.Logger
}

func NewFileService(files ports.FileRepository, blobs ports.BlobStore, logger zerolog.Logger) *FileService {
	return &FileService{files: files, blobs: blobs, logger: logger}
}

// Upload validates the content type against the allow-list, streams the
// bytes to the blob store, and records the file metadata. The allow-list
// check happens before any storage I/O: a rejected upload leaves no trace.
func (s *FileService) Upload(ctx context.Context, input ports.UploadInput) (*ports.UploadResult, error) {
	if !domain.AllowedContentType(input.ContentType) {
		metrics.UploadsRejectedTotal.WithLabelValues("invalid_file_type").Inc()
		return nil, domain.ErrInvalidFileType
	}

	id := uuid.NewString()
	key := id + domain.SafeExt(input.Filename)

	if err := s.blobs.Put(ctx, key, input.Body, input.Size, input.ContentType); err != nil {
		return nil, fmt.Errorf("store file bytes: %w", err)
	}

	record := &domain.FileRecord{
		ID:          id,
		OwnerID:     input.OwnerID,
		Filename:    path.Base(input.Filename),
		ContentType: input.ContentType,
		StorageKey:  key,
		SizeBytes:   input.Size,
		UploadedAt:  time.Now().UTC(),
	}

	if err := s.files.Create(ctx, record); err != nil {
		// The blob is orphaned if this cleanup fails; the key is logged so
		// it can be reaped manually.
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.logger.Warn().Err(delErr).Str("storage_key", key).Msg("orphaned blob after failed metadata insert")
		}
		return nil, fmt.Errorf("store file record: %w", err)
	}

	metrics.UploadsTotal.WithLabelValues(record.ContentType).Inc()
	s.logger.Info().
		Str("file_id", record.ID).
		Str("owner_id", record.OwnerID).
		Str("content_type", record.ContentType).
		Int64("size_bytes", record.SizeBytes).
		Msg("file uploaded")

	return &ports.UploadResult{FileID: record.ID}, nil
}

// List returns metadata for every uploaded file.
func (s *FileService) List(ctx context.Context) ([]ports.FileInfo, error) {
	records, err := s.files.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	infos := make([]ports.FileInfo, 0, len(records))
	for _, r := range records {
		infos = append(infos, ports.FileInfo{
			ID:          r.ID,
			Filename:    r.Filename,
			ContentType: r.ContentType,
			SizeBytes:   r.SizeBytes,
			UploadedAt:  r.UploadedAt,
		})
	}
	return infos, nil
}
