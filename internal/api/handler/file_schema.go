package handler

import "time"

type uploadResponse struct {
	FileID string `json:"file_id"`
}

type fileInfoResponse struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type downloadLinkResponse struct {
	DownloadLink string `json:"download-link"`
}
