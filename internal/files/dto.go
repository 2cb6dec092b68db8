package files

// UploadResponse is returned by POST /files.
type UploadResponse struct {
	FileID string `json:"fileId"`
}

// DownloadResponse is returned by GET /files/{fileId}.
type DownloadResponse struct {
	URL string `json:"url"`
}
