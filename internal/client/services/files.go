package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
	"github.com/dmitrijs2005/scimaterials/internal/filex"
)

// FileClient is the part of client.Client the file service needs.
type FileClient interface {
	Ping(ctx context.Context) error
	GetFileInfoByID(ctx context.Context, id string) (*models.FileInfo, error)
	GetFileInfoByHash(ctx context.Context, hash string) (*models.FileInfo, error)
	Download(ctx context.Context, id string, w io.Writer) (int64, error)
}

type FileService interface {
	Ping(ctx context.Context) error
	Info(ctx context.Context, id string) (*models.FileInfo, error)
	Find(ctx context.Context, hash string) (*models.FileInfo, error)
	Download(ctx context.Context, id, dest string) (string, int64, error)
}

type fileService struct {
	client FileClient
}

func NewFileService(client FileClient) FileService {
	return &fileService{client: client}
}

func (s *fileService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *fileService) Info(ctx context.Context, id string) (*models.FileInfo, error) {
	return s.client.GetFileInfoByID(ctx, id)
}

func (s *fileService) Find(ctx context.Context, hash string) (*models.FileInfo, error) {
	return s.client.GetFileInfoByHash(ctx, hash)
}

// Download saves file id to dest. When dest is an existing directory the
// file keeps its stored name inside it. It returns the written path.
func (s *fileService) Download(ctx context.Context, id, dest string) (string, int64, error) {
	if st, err := os.Stat(dest); err == nil && st.IsDir() {
		info, err := s.client.GetFileInfoByID(ctx, id)
		if err != nil {
			return "", 0, err
		}
		dest = filepath.Join(dest, info.FileName)
	}

	if err := filex.EnsureParentDir(dest); err != nil {
		return "", 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := s.client.Download(ctx, id, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", n, err
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", n, fmt.Errorf("rename to %s: %w", dest, err)
	}
	return dest, n, nil
}
