package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/scimaterials/internal/common"
	"github.com/dmitrijs2005/scimaterials/internal/server/models"
)

// S3API is the part of *s3.Client the store needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options configures the S3 client.
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// Seams for tests.
var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) S3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// NewS3Client builds an S3 client with static credentials and an optional
// custom endpoint (MinIO or any S3-compatible service).
func NewS3Client(ctx context.Context, o S3Options) (S3API, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	}), nil
}

// S3Store writes objects to an S3 bucket. The payload is staged in a local
// temporary file while it is hashed so PutObject gets a seekable body with a
// known length.
type S3Store struct {
	client  S3API
	bucket  string
	tmpDir  string
	newHash HashFunc
}

func NewS3Store(client S3API, bucket, tmpDir string, newHash HashFunc) *S3Store {
	return &S3Store{client: client, bucket: bucket, tmpDir: tmpDir, newHash: newHash}
}

func (s *S3Store) Write(ctx context.Context, destination string, src io.Reader) (WriteResult, error) {
	tmp, err := os.CreateTemp(s.tmpDir, "s3-upload-*")
	if err != nil {
		return WriteResult{}, fmt.Errorf("create staging file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	dr := newDigestReader(ctx, src, s.newHash())
	if _, err := io.Copy(tmp, dr); err != nil {
		return WriteResult{}, fmt.Errorf("stage %s: %w", destination, err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return WriteResult{}, fmt.Errorf("rewind staging file: %w", err)
	}

	res := dr.result()
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(destination)),
		Body:          tmp,
		ContentLength: aws.Int64(res.Size),
		ContentType:   aws.String("application/octet-stream"),
	})
	if err != nil {
		return WriteResult{}, fmt.Errorf("put %s: %w", destination, err)
	}

	return res, nil
}

func (s *S3Store) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(path)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, path)
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return out.Body, nil
}

func (s *S3Store) WriteMetadata(ctx context.Context, path string, rec *models.FileRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(path)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", path, err)
	}
	return nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

func objectKey(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "/")
}
