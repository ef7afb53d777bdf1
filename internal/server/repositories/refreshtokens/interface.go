// Package refreshtokens stores the server side of the refresh token rotation.
package refreshtokens

import (
	"context"
	"time"

	"github.com/monotes/monotes/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID, token string, validity time.Duration) error

	// Find returns common.ErrNotFound for unknown tokens.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	Delete(ctx context.Context, token string) error
}
