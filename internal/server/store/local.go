package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/filex"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
)

// LocalStore keeps files on the local filesystem. Writes go to a temporary
// file next to the destination and are renamed into place once complete.
type LocalStore struct {
	newHash HashFunc
}

func NewLocalStore(newHash HashFunc) *LocalStore {
	return &LocalStore{newHash: newHash}
}

func (s *LocalStore) Write(ctx context.Context, destination string, src io.Reader) (WriteResult, error) {
	dr := newDigestReader(ctx, src, s.newHash())

	err := writeAtomic(destination, func(w io.Writer) error {
		_, err := io.Copy(w, dr)
		return err
	})
	if err != nil {
		return WriteResult{}, err
	}

	return dr.result(), nil
}

func (s *LocalStore) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return f, nil
}

func (s *LocalStore) WriteMetadata(ctx context.Context, path string, rec *models.FileRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	return writeAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeAtomic(destination string, fill func(w io.Writer) error) error {
	dir, err := filex.EnsureDir(filepath.Dir(destination))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destination)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if err := fill(tmp); err != nil {
		return fmt.Errorf("write %s: %w", destination, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", destination, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", destination, err)
	}
	if err := os.Rename(tmpPath, destination); err != nil {
		return fmt.Errorf("rename %s: %w", destination, err)
	}

	committed = true
	return nil
}
