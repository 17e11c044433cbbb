// Package repomanager vends repository implementations for the configured
// metadata backend and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/scimaterials/internal/dbx"
	"github.com/dmitrijs2005/scimaterials/internal/server/repositories/files"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Files(db dbx.DBTX) files.Repository
}
