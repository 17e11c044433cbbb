package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/scimaterials/internal/server/config"
)

// New builds the backend selected by cfg.StorageBackend.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	newHash, err := NewHashFunc(cfg.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	switch cfg.StorageBackend {
	case config.BackendLocal, "":
		return NewLocalStore(newHash), nil

	case config.BackendS3:
		client, err := NewS3Client(ctx, S3Options{
			Region:       cfg.S3Region,
			AccessKey:    cfg.S3RootUser,
			SecretKey:    cfg.S3RootPassword,
			BaseEndpoint: cfg.S3BaseEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg.S3Bucket, "", newHash), nil

	case config.BackendMinio:
		client, err := NewMinioClient(minioHost(cfg.S3BaseEndpoint), cfg.S3RootUser, cfg.S3RootPassword, cfg.S3UseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio client: %w", err)
		}
		s := NewMinioStore(client, cfg.S3Bucket, newHash)
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// minioHost turns "http://127.0.0.1:9000/" into "127.0.0.1:9000".
func minioHost(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	return strings.TrimSuffix(endpoint, "/")
}
