package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteRepo implements Repo on a local SQLite file. Upload times are
// stored as RFC 3339 text, the same encoding DynamoDB items use.
type SQLiteRepo struct {
	DB *sql.DB
}

// Create inserts a new record.
func (r *SQLiteRepo) Create(ctx context.Context, rec FileRecord) error {
	const query = `INSERT INTO file_metadata (file_id, file_name, upload_time) VALUES (?, ?, ?)`

	if _, err := r.DB.ExecContext(ctx, query, rec.ID, rec.FileName, formatUploadTime(rec.UploadTime)); err != nil {
		return fmt.Errorf("insert file_metadata fileId=%s: %w", rec.ID, err)
	}
	return nil
}

// GetByID returns the record for id or ErrNotFound.
func (r *SQLiteRepo) GetByID(ctx context.Context, id string) (FileRecord, error) {
	const query = `SELECT file_id, file_name, upload_time FROM file_metadata WHERE file_id = ?`

	var (
		rec        FileRecord
		uploadTime string
	)
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.FileName, &uploadTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FileRecord{}, ErrNotFound
		}
		return FileRecord{}, fmt.Errorf("select file_metadata fileId=%s: %w", id, err)
	}
	ts, err := time.Parse(time.RFC3339Nano, uploadTime)
	if err != nil {
		return FileRecord{}, fmt.Errorf("parse upload_time fileId=%s: %w", id, err)
	}
	rec.UploadTime = ts
	return rec, nil
}
