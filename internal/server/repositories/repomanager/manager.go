// Package repomanager wires concrete repositories to a database handle
// and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/sealdrop/sealdrop/internal/dbx"
	"github.com/sealdrop/sealdrop/internal/server/repositories/packages"
	"github.com/sealdrop/sealdrop/internal/server/repositories/refreshtokens"
	"github.com/sealdrop/sealdrop/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Packages(db dbx.DBTX) packages.Repository
}
