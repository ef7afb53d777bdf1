package repomanager

import (
	"github.com/monotes/monotes/internal/dbx"
	"github.com/monotes/monotes/internal/server/repositories/notes"
	"github.com/monotes/monotes/internal/server/repositories/refreshtokens"
	"github.com/monotes/monotes/internal/server/repositories/users"
)

// PostgresManager returns PostgreSQL-backed repositories.
type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresManager) Notes(db dbx.DBTX) notes.Repository {
	return notes.NewPostgresRepository(db)
}
