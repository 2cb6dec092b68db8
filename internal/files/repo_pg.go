package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// PGRepo implements Repo using the file_metadata table in Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new record.
func (r *PGRepo) Create(ctx context.Context, rec FileRecord) error {
	const query = `
INSERT INTO file_metadata (file_id, file_name, upload_time)
VALUES ($1, $2, $3)`

	if _, err := r.DB.ExecContext(ctx, query, rec.ID, rec.FileName, rec.UploadTime.UTC()); err != nil {
		return fmt.Errorf("insert file_metadata fileId=%s: %w", rec.ID, err)
	}
	return nil
}

// GetByID returns the record for id or ErrNotFound.
func (r *PGRepo) GetByID(ctx context.Context, id string) (FileRecord, error) {
	const query = `
SELECT file_id, file_name, upload_time
FROM file_metadata
WHERE file_id = $1`

	var rec FileRecord
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.FileName, &rec.UploadTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return FileRecord{}, ErrNotFound
		}
		return FileRecord{}, fmt.Errorf("select file_metadata fileId=%s: %w", id, err)
	}
	rec.UploadTime = rec.UploadTime.UTC()
	return rec, nil
}
