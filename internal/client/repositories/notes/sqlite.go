package notes

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/monotes/monotes/internal/client/models"
	"github.com/monotes/monotes/internal/common"
	"github.com/monotes/monotes/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Note, error) {
	query := `SELECT id, content, updated_at, cloud_status FROM notes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	n := &models.Note{}
	if err := row.Scan(&n.ID, &n.Content, &n.UpdatedAt, &n.CloudStatus); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select note: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, n *models.Note) error {
	query := `INSERT INTO notes (id, content, updated_at, cloud_status)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET content = excluded.content,
				updated_at = excluded.updated_at,
				cloud_status = excluded.cloud_status
	`
	_, err := r.db.ExecContext(ctx, query, n.ID, n.Content, n.UpdatedAt, n.CloudStatus)
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Note, error) {
	query := `SELECT id, content, updated_at, cloud_status FROM notes ORDER BY updated_at DESC`
	return r.queryNotes(ctx, query)
}

func (r *SQLiteRepository) Search(ctx context.Context, q string) ([]models.Note, error) {
	// LIKE is case-insensitive for ASCII in SQLite; LOWER() covers mixed input.
	query := `SELECT id, content, updated_at, cloud_status FROM notes
			WHERE LOWER(content) LIKE '%' || LOWER(?) || '%'
			ORDER BY updated_at DESC`
	return r.queryNotes(ctx, query, q)
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status models.CloudStatus) error {
	query := `UPDATE notes SET cloud_status = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update note status: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM notes WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryNotes(ctx context.Context, query string, args ...any) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []models.Note
	for rows.Next() {
		var item models.Note
		if err := rows.Scan(&item.ID, &item.Content, &item.UpdatedAt, &item.CloudStatus); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
