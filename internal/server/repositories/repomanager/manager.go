// Package repomanager binds repositories to a database handle and owns
// schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkarpis/accountd/internal/dbx"
	"github.com/mkarpis/accountd/internal/server/repositories/users"
)

// RepositoryManager hands out repositories bound to the given DBTX, which may
// be the pool or a transaction started with dbx.WithTx.
type RepositoryManager interface {
	Users(db dbx.DBTX) users.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
