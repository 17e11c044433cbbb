// Package services contains the server's business logic.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/logging"
	"github.com/dmitrijs2005/scimaterials/internal/server/config"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
	"github.com/dmitrijs2005/scimaterials/internal/server/repositories/files"
	"github.com/dmitrijs2005/scimaterials/internal/server/store"
	"github.com/google/uuid"
	"github.com/im7mortal/kmutex"
	"github.com/juju/clock"
)

// FileService stores uploaded files and answers metadata queries.
//
// Bytes of file <id> live at <basePath>/<id>, its JSON sidecar at
// <basePath>/<id>.json. Metadata is written only after the bytes are.
type FileService struct {
	repo      files.Repository
	store     store.Store
	basePath  string
	overwrite bool
	names     *kmutex.Kmutex
	clock     clock.Clock
	logger    logging.Logger
}

type FileServiceOption func(*FileService)

// WithClock replaces the wall clock used to time uploads.
func WithClock(c clock.Clock) FileServiceOption {
	return func(s *FileService) { s.clock = c }
}

func NewFileService(repo files.Repository, st store.Store, cfg *config.Config, logger logging.Logger, opts ...FileServiceOption) (*FileService, error) {
	if strings.TrimSpace(cfg.BasePath) == "" {
		return nil, config.ErrMissingBasePath
	}

	s := &FileService{
		repo:      repo,
		store:     st,
		basePath:  cfg.BasePath,
		overwrite: cfg.Overwrite,
		clock:     clock.WallClock,
		logger:    logger.With("module", "file_service"),
	}
	if cfg.LockByName {
		s.names = kmutex.New()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetFileInfoByID returns the record of file id. Ids that are not UUIDs
// cannot exist and are reported as not found.
func (s *FileService) GetFileInfoByID(ctx context.Context, id string) (*models.FileRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", common.ErrorNotFound, id)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *FileService) GetFileInfoByHash(ctx context.Context, hash string) (*models.FileRecord, error) {
	return s.repo.GetByHash(ctx, strings.ToLower(hash))
}

// GetFileStream opens the stored bytes of file id. The caller closes the stream.
func (s *FileService) GetFileStream(ctx context.Context, id string) (io.ReadCloser, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", common.ErrorNotFound, id)
	}
	return s.store.OpenRead(ctx, s.blobPath(id))
}

// Upload stores src under fileName.
//
// A new name gets a fresh id. An existing name is rejected with
// common.ErrAlreadyExists unless overwrite is enabled, in which case the
// record keeps its id and only hash and size change. Without the per-name
// lock two concurrent uploads of a new name may both pass the existence check.
func (s *FileService) Upload(ctx context.Context, src io.Reader, fileName, contentType string) (*models.FileRecord, error) {
	name := BaseName(fileName)
	if name == "" {
		return nil, fmt.Errorf("%w: file name %q", common.ErrValidation, fileName)
	}

	if s.names != nil {
		s.names.Lock(name)
		defer s.names.Unlock(name)
	}

	log := s.logger.With("file_name", name)

	existing, err := s.repo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup %s: %w", name, err)
	}

	if existing != nil && !s.overwrite {
		log.Error(ctx, "file already exists", "id", existing.ID)
		return nil, fmt.Errorf("%w: %s", common.ErrAlreadyExists, name)
	}

	id := uuid.NewString()
	if existing != nil {
		id = existing.ID
	}

	started := s.clock.Now()
	res, err := s.store.Write(ctx, s.blobPath(id), src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn(ctx, "upload canceled", "id", id)
			return nil, fmt.Errorf("%w: %w", common.ErrCanceled, ctxErr)
		}
		log.Error(ctx, "storage write failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrStorage, err)
	}
	log.Info(ctx, "file stored", "id", id, "size", res.Size, "elapsed", s.clock.Now().Sub(started))

	var rec *models.FileRecord
	if existing == nil {
		rec = &models.FileRecord{ID: id, FileName: name, ContentType: contentType, Hash: res.Hash, Size: res.Size}
		err = s.repo.Add(ctx, rec)
	} else {
		rec = existing.Clone()
		rec.Hash = res.Hash
		rec.Size = res.Size
		err = s.repo.Update(ctx, rec)
	}
	if err != nil {
		log.Error(ctx, "metadata save failed", "id", id, "error", err)
		return nil, fmt.Errorf("save metadata %s: %w", id, err)
	}

	if err := s.store.WriteMetadata(ctx, s.metaPath(id), rec); err != nil {
		log.Error(ctx, "sidecar write failed", "id", id, "error", err)
		return nil, fmt.Errorf("%w: sidecar %s: %w", common.ErrStorage, id, err)
	}

	return rec, nil
}

func (s *FileService) blobPath(id string) string {
	return filepath.Join(s.basePath, id)
}

func (s *FileService) metaPath(id string) string {
	return filepath.Join(s.basePath, id+".json")
}

// BaseName strips any directory part, accepting both / and \ separators.
func BaseName(fileName string) string {
	name := strings.TrimSpace(fileName)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "." || name == ".." {
		return ""
	}
	return name
}
