package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/scimaterials/internal/dbx"
	"github.com/dmitrijs2005/scimaterials/internal/server/repositories/files"
)

// MemoryRepositoryManager hands out one shared in-memory repository,
// whatever handle it is given.
type MemoryRepositoryManager struct {
	files *files.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{files: files.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Files(dbx.DBTX) files.Repository {
	return m.files
}
