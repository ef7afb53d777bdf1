package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/server/models"
	"github.com/monotes/monotes/internal/server/repositories/repomanager"
	"github.com/monotes/monotes/internal/slugx"
)

// MaxContentBytes caps the size of a single note body.
const MaxContentBytes = 1 << 20

// NoteService implements the owner-scoped note operations behind the HTTP
// API. Soft-deleted records read as absent; an upsert revives them in place.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

func validateNote(noteID, content string) error {
	if !slugx.Valid(noteID) {
		return fmt.Errorf("%w: malformed note id %q", common.ErrValidation, noteID)
	}
	if len(content) > MaxContentBytes {
		return fmt.Errorf("%w: content exceeds %d bytes", common.ErrValidation, MaxContentBytes)
	}
	return nil
}

// Upsert creates or overwrites the user's record for the slug, clearing any
// soft-delete marker, and returns the surrogate record id.
func (s *NoteService) Upsert(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	if err := validateNote(noteID, content); err != nil {
		return nil, err
	}
	repo := s.repomanager.Notes(s.db)
	return repo.Upsert(ctx, userID, noteID, content, updatedAt)
}

// Fetch returns nil (not an error) for absent or soft-deleted records.
func (s *NoteService) Fetch(ctx context.Context, userID, noteID string) (*models.Note, error) {
	repo := s.repomanager.Notes(s.db)
	n, err := repo.GetByNoteID(ctx, userID, noteID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the user's live notes, newest first.
func (s *NoteService) List(ctx context.Context, userID string) ([]models.Note, error) {
	repo := s.repomanager.Notes(s.db)
	return repo.List(ctx, userID)
}

// Search returns the user's live notes containing q, newest first.
func (s *NoteService) Search(ctx context.Context, userID, q string) ([]models.Note, error) {
	repo := s.repomanager.Notes(s.db)
	return repo.Search(ctx, userID, q)
}

// Update overwrites an existing live record; common.ErrNotFound when the user
// has none.
func (s *NoteService) Update(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	if err := validateNote(noteID, content); err != nil {
		return nil, err
	}
	repo := s.repomanager.Notes(s.db)
	return repo.Update(ctx, userID, noteID, content, updatedAt)
}

// SoftDelete marks the record deleted; common.ErrNotFound when the user has
// no live record for the slug.
func (s *NoteService) SoftDelete(ctx context.Context, userID, noteID string) error {
	repo := s.repomanager.Notes(s.db)
	return repo.SoftDelete(ctx, userID, noteID)
}
