package files

import "time"

// FileRecord associates a generated id with the stored object name.
// FileName doubles as the blob key.
type FileRecord struct {
	ID         string
	FileName   string
	UploadTime time.Time
}
