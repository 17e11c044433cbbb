// Package config handles configuration for the file storage server,
// including defaults, JSON overlay, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Storage backends understood by the server.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Hash algorithms understood by the hashing store.
const (
	HashSHA256  = "sha256"
	HashBLAKE2b = "blake2b"
)

// ErrMissingBasePath is returned when no storage base path is configured.
var ErrMissingBasePath = errors.New("base path is not configured")

// Config holds runtime settings for the file storage server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the public gRPC endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects the in-memory repository.
//   - SecretKey: HMAC secret used to verify access tokens. Empty disables auth.
//   - BasePath: root directory (or key prefix) for stored bytes and sidecars. Required.
//   - Overwrite: replace bytes of an existing file with the same name.
//   - LockByName: serialize concurrent uploads sharing a file name.
//   - StorageBackend: "local", "s3" or "minio".
//   - HashAlgorithm: "sha256" or "blake2b".
//   - MaxConcurrentTransfers: limit for parallel Upload/Download streams, 0 = unlimited.
//   - S3RootUser / S3RootPassword / S3Bucket / S3Region / S3BaseEndpoint / S3UseSSL:
//     object storage settings shared by the s3 and minio backends.
type Config struct {
	EndpointAddrGRPC       string
	DatabaseDSN            string
	SecretKey              string
	BasePath               string
	Overwrite              bool
	LockByName             bool
	StorageBackend         string
	HashAlgorithm          string
	MaxConcurrentTransfers int
	S3RootUser             string
	S3RootPassword         string
	S3Bucket               string
	S3Region               string
	S3BaseEndpoint         string
	S3UseSSL               bool
}

// LoadDefaults populates Config with development defaults.
// BasePath is left empty on purpose: the operator has to choose it.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.StorageBackend = BackendLocal
	c.HashAlgorithm = HashSHA256
	c.MaxConcurrentTransfers = 8
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "materials"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// Validate reports configuration errors that must stop the server at startup.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BasePath) == "" {
		return ErrMissingBasePath
	}

	switch c.StorageBackend {
	case BackendLocal, BackendS3, BackendMinio:
	default:
		return fmt.Errorf("unknown storage backend %q", c.StorageBackend)
	}

	switch c.HashAlgorithm {
	case HashSHA256, HashBLAKE2b:
	default:
		return fmt.Errorf("unknown hash algorithm %q", c.HashAlgorithm)
	}

	if c.MaxConcurrentTransfers < 0 {
		return fmt.Errorf("max concurrent transfers must not be negative, got %d", c.MaxConcurrentTransfers)
	}

	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
