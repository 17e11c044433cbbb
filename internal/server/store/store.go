// Package store persists uploaded file bytes and metadata sidecars while
// computing a content digest in a single streaming pass.
//
// Three backends are provided: LocalStore (filesystem), S3Store
// (aws-sdk-go-v2) and MinioStore (minio-go). All of them address objects by
// a slash or OS path; object storage backends use it as the object key.
package store

import (
	"context"
	"io"

	"github.com/dmitrijs2005/scimaterials/internal/server/models"
)

// WriteResult is the outcome of a successful Write.
type WriteResult struct {
	Hash string
	Size int64
}

// Store is the hashing store used by the file service.
type Store interface {
	// Write streams src to destination and returns the digest and byte count
	// of everything that was read. A failed write returns an error and leaves
	// no file at destination.
	Write(ctx context.Context, destination string, src io.Reader) (WriteResult, error)

	// OpenRead opens a stored object. Missing objects yield common.ErrorNotFound.
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)

	// WriteMetadata stores rec as a JSON sidecar at path.
	WriteMetadata(ctx context.Context, path string, rec *models.FileRecord) error
}
