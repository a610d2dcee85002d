package ports

import (
	"context"
	"io"

	"github.com/securedocs/fileshare/internal/core/domain"
)

// Download bundles the metadata and byte stream returned when a download
// link is resolved. The caller owns Body and must close it.
type Download struct {
	Record *domain.FileRecord
	Body   io.ReadCloser
}

// LinkService mints and resolves time-limited download links.
type LinkService interface {
	// CreateDownloadLink returns a short-lived URL granting requesterID
	// access to the file's bytes. The URL embeds a signed token bound to the
	// file id; it never contains the storage key.
	CreateDownloadLink(ctx context.Context, fileID, requesterID string) (string, error)
	// ResolveDownloadLink validates the token, enforces expiry and (when
	// enabled) single use, and returns the file stream. A concurrent second
	// resolution of a single-use link fails with domain.ErrLinkConsumed.
	ResolveDownloadLink(ctx context.Context, token string) (*Download, error)
}
