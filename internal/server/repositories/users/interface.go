// Package users provides PostgreSQL-backed persistence for accounts.
package users

import (
	"context"

	"github.com/monotes/monotes/internal/server/models"
)

type Repository interface {
	// Create inserts the user and returns it with its generated id. A taken
	// username yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUserName returns common.ErrNotFound when the account is absent.
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}
