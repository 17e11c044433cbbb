package client

import (
	"context"
	"io"

	"github.com/dmitrijs2005/scimaterials/internal/client/models"
)

type Client interface {
	Close() error
	Ping(ctx context.Context) error
	Upload(ctx context.Context, src io.Reader, req models.UploadFileRequest) (*models.UploadResult, error)
	GetFileInfoByID(ctx context.Context, id string) (*models.FileInfo, error)
	GetFileInfoByHash(ctx context.Context, hash string) (*models.FileInfo, error)
	Download(ctx context.Context, id string, w io.Writer) (int64, error)
}
