// Package files persists FileRecord metadata.
package files

import (
	"context"

	"github.com/dmitrijs2005/scimaterials/internal/server/models"
)

// Repository is the metadata store behind the file service. Lookups of
// absent records return common.ErrorNotFound.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)
	GetByHash(ctx context.Context, hash string) (*models.FileRecord, error)
	GetByName(ctx context.Context, name string) (*models.FileRecord, error)
	Add(ctx context.Context, rec *models.FileRecord) error
	Update(ctx context.Context, rec *models.FileRecord) error
}
