package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minioPartSize bounds the buffer minio-go allocates for a stream of
// unknown length. Without it the client sizes parts for a 5 TiB object.
const minioPartSize = 16 << 20

// MinioAPI is the part of *minio.Client the store needs.
type MinioAPI interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// NewMinioClient connects to a MinIO endpoint given as host:port.
func NewMinioClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
}

// MinioStore streams objects straight into a MinIO bucket.
type MinioStore struct {
	client  MinioAPI
	bucket  string
	newHash HashFunc
}

func NewMinioStore(client MinioAPI, bucket string, newHash HashFunc) *MinioStore {
	return &MinioStore{client: client, bucket: bucket, newHash: newHash}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioStore) Write(ctx context.Context, destination string, src io.Reader) (WriteResult, error) {
	dr := newDigestReader(ctx, src, s.newHash())

	_, err := s.client.PutObject(ctx, s.bucket, objectKey(destination), dr, -1,
		minio.PutObjectOptions{ContentType: "application/octet-stream", PartSize: minioPartSize})
	if err != nil {
		return WriteResult{}, fmt.Errorf("put %s: %w", destination, err)
	}

	return dr.result(), nil
}

func (s *MinioStore) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	key := objectKey(path)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return obj, nil
}

func (s *MinioStore) WriteMetadata(ctx context.Context, path string, rec *models.FileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, objectKey(path), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}
