package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/dbx"
	"github.com/monotes/monotes/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Upsert(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	query := `
		INSERT INTO notes (user_id, note_id, content, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, note_id)
		DO UPDATE SET
			content = EXCLUDED.content,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL
		RETURNING id;
	`
	row := r.db.QueryRowContext(ctx, query, userID, noteID, content, updatedAt)

	n := models.Note{UserID: userID, NoteID: noteID, Content: content, UpdatedAt: updatedAt}
	if err := row.Scan(&n.ID); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &n, nil
}

func (r *PostgresRepository) GetByNoteID(ctx context.Context, userID, noteID string) (*models.Note, error) {
	query := `
		SELECT id, user_id, note_id, content, updated_at
		FROM notes
		WHERE user_id = $1 AND note_id = $2 AND deleted_at IS NULL;
	`
	row := r.db.QueryRowContext(ctx, query, userID, noteID)

	var n models.Note
	if err := row.Scan(&n.ID, &n.UserID, &n.NoteID, &n.Content, &n.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &n, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]models.Note, error) {
	query := `
		SELECT id, user_id, note_id, content, updated_at
		FROM notes
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC;
	`
	return r.selectNotes(ctx, query, userID)
}

func (r *PostgresRepository) Search(ctx context.Context, userID, q string) ([]models.Note, error) {
	query := `
		SELECT id, user_id, note_id, content, updated_at
		FROM notes
		WHERE user_id = $1 AND deleted_at IS NULL AND content ILIKE '%' || $2 || '%'
		ORDER BY updated_at DESC;
	`
	return r.selectNotes(ctx, query, userID, q)
}

func (r *PostgresRepository) Update(ctx context.Context, userID, noteID, content string, updatedAt int64) (*models.Note, error) {
	query := `
		UPDATE notes
		SET content = $3, updated_at = $4
		WHERE user_id = $1 AND note_id = $2 AND deleted_at IS NULL
		RETURNING id;
	`
	row := r.db.QueryRowContext(ctx, query, userID, noteID, content, updatedAt)

	n := models.Note{UserID: userID, NoteID: noteID, Content: content, UpdatedAt: updatedAt}
	if err := row.Scan(&n.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &n, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, userID, noteID string) error {
	query := `
		UPDATE notes
		SET deleted_at = now()
		WHERE user_id = $1 AND note_id = $2 AND deleted_at IS NULL;
	`
	res, err := r.db.ExecContext(ctx, query, userID, noteID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) selectNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var n models.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.NoteID, &n.Content, &n.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
