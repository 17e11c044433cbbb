// Package uploads persists the upload journal: the latest state of every
// job plus the full list of transitions, in the local SQLite database.
package uploads

import (
	"context"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
)

type Repository interface {
	// Save records ev and moves the job's latest state to it.
	Save(ctx context.Context, ev models.StateEvent) error

	// List returns every known job, most recently updated first.
	List(ctx context.Context) ([]models.UploadRecord, error)

	// Get returns the latest state of one job or common.ErrorNotFound.
	Get(ctx context.Context, jobID string) (*models.UploadRecord, error)

	// History returns the transitions of one job, oldest first.
	History(ctx context.Context, jobID string) ([]models.StateEvent, error)
}
