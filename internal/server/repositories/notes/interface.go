// Package notes provides PostgreSQL-backed persistence for note records.
// Every query is scoped to one owner; a soft-deleted row is invisible to
// reads but is revived in place by the next upsert.
package notes

import (
	"context"

	"github.com/monotes/monotes/internal/server/models"
)

type Repository interface {
	// Upsert creates the owner's record for the slug or overwrites its
	// content and updatedAt, clearing any soft-delete marker. Returns the
	// record with its surrogate id.
	Upsert(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error)

	// GetByNoteID returns common.ErrNotFound for absent or soft-deleted
	// records.
	GetByNoteID(ctx context.Context, userID, noteID string) (*models.Note, error)

	// List returns the owner's live records, newest first.
	List(ctx context.Context, userID string) ([]models.Note, error)

	// Search returns the owner's live records whose content contains q
	// (case-insensitive), newest first.
	Search(ctx context.Context, userID, q string) ([]models.Note, error)

	// Update overwrites an existing live record. Returns common.ErrNotFound
	// when the owner has none.
	Update(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error)

	// SoftDelete marks the record deleted. Returns common.ErrNotFound when
	// the owner has no live record for the slug.
	SoftDelete(ctx context.Context, userID, noteID string) error
}
