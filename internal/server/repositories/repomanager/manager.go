// Package repomanager hands out repositories bound to a specific database
// handle, so services can run several repository calls inside one
// transaction.
package repomanager

import (
	"github.com/monotes/monotes/internal/dbx"
	"github.com/monotes/monotes/internal/server/repositories/notes"
	"github.com/monotes/monotes/internal/server/repositories/refreshtokens"
	"github.com/monotes/monotes/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Notes(db dbx.DBTX) notes.Repository
}
