package notes

import (
	"context"

	"github.com/monotes/monotes/internal/client/models"
)

// Repository describes the persistence operations for locally stored notes.
// Implementations are backed by the client's SQLite database.
type Repository interface {
	// GetByID returns a note by slug, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Note, error)

	// Upsert inserts a new note or overwrites content, updated_at and
	// cloud_status of an existing one.
	Upsert(ctx context.Context, note *models.Note) error

	// List returns all notes, most recently updated first.
	List(ctx context.Context) ([]models.Note, error)

	// Search returns notes whose content contains q (case-insensitive),
	// most recently updated first.
	Search(ctx context.Context, q string) ([]models.Note, error)

	// UpdateStatus rewrites only the cloud_status of an existing note.
	UpdateStatus(ctx context.Context, id string, status models.CloudStatus) error

	// DeleteByID removes a note. Deleting an absent note is a no-op.
	DeleteByID(ctx context.Context, id string) error
}
