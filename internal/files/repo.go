package files

import "context"

// Repo persists file records keyed by id.
type Repo interface {
	Create(ctx context.Context, rec FileRecord) error
	GetByID(ctx context.Context, id string) (FileRecord, error)
}
