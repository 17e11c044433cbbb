package files

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
)

// MemoryRepository keeps records in process memory. It is used when no
// database DSN is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	byID   map[string]*models.FileRecord
	byName map[string]string
	order  []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:   make(map[string]*models.FileRecord),
		byName: make(map[string]string),
	}
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rec.Clone(), nil
}

// GetByHash returns the most recently written record with the given digest.
func (r *MemoryRepository) GetByHash(ctx context.Context, hash string) (*models.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.order) - 1; i >= 0; i-- {
		if rec := r.byID[r.order[i]]; rec.Hash == hash {
			return rec.Clone(), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) GetByName(ctx context.Context, name string) (*models.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) Add(ctx context.Context, rec *models.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[rec.ID]; ok {
		return fmt.Errorf("%w: id %s", common.ErrAlreadyExists, rec.ID)
	}
	if _, ok := r.byName[rec.FileName]; ok {
		return fmt.Errorf("%w: %s", common.ErrAlreadyExists, rec.FileName)
	}

	r.byID[rec.ID] = rec.Clone()
	r.byName[rec.FileName] = rec.ID
	r.order = append(r.order, rec.ID)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, rec *models.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[rec.ID]
	if !ok {
		return common.ErrorNotFound
	}
	cur.Hash = rec.Hash
	cur.Size = rec.Size

	r.touch(rec.ID)
	return nil
}

// touch moves id to the end of the write order.
func (r *MemoryRepository) touch(id string) {
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.order = append(r.order, id)
}
