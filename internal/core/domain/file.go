package domain

import (
	"path"
	"strings"
	"time"
)

// FileRecord is the metadata persisted for every uploaded file. Records are
// immutable once written; the bytes live in a blob store under StorageKey,
// which is never exposed outside the server.
type FileRecord struct {
	ID          string    `json:"id" bson:"_id"`
	OwnerID     string    `json:"owner_id" bson:"owner_id"`
	Filename    string    `json:"filename" bson:"filename"`
	ContentType string    `json:"content_type" bson:"content_type"`
	StorageKey  string    `json:"-" bson:"storage_key"`
	SizeBytes   int64     `json:"size_bytes" bson:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at" bson:"uploaded_at"`
}

// allowedContentTypes is the upload allow-list: office document formats only.
var allowedContentTypes = map[string]struct{}{
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.ms-powerpoint": {},
	"application/msword":            {},
	"application/vnd.ms-excel":      {},
}

// AllowedContentType reports whether contentType may be uploaded. Parameters
// such as "; charset=..." are ignored.
func AllowedContentType(contentType string) bool {
	ct := strings.TrimSpace(contentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	_, ok := allowedContentTypes[strings.ToLower(ct)]
	return ok
}

// SafeExt returns the lowercased extension of filename when it looks sane,
// or "" otherwise. Used to build storage keys without trusting client input.
func SafeExt(filename string) string {
	ext := strings.ToLower(path.Ext(path.Base(filename)))
	if len(ext) < 2 || len(ext) > 8 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
