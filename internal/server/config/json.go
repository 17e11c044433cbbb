package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/scimaterials/internal/flagx"
)

// JsonConfig is the on-disk shape of the server configuration file.
// Pointer fields distinguish "absent" from "false/zero" so that a JSON
// file only overrides what it mentions.
type JsonConfig struct {
	EndpointAddrGRPC       string `json:"endpoint_addr_grpc"`
	DatabaseDSN            string `json:"database_dsn"`
	SecretKey              string `json:"secret_key"`
	BasePath               string `json:"base_path"`
	Overwrite              *bool  `json:"overwrite"`
	LockByName             *bool  `json:"lock_by_name"`
	StorageBackend         string `json:"storage_backend"`
	HashAlgorithm          string `json:"hash_algorithm"`
	MaxConcurrentTransfers *int   `json:"max_concurrent_transfers"`
	S3RootUser             string `json:"s3_root_user"`
	S3RootPassword         string `json:"s3_root_password"`
	S3Bucket               string `json:"s3_bucket"`
	S3Region               string `json:"s3_region"`
	S3BaseEndpoint         string `json:"s3_base_endpoint"`
	S3UseSSL               *bool  `json:"s3_use_ssl"`
}

// parseJson overlays config with values from the file named by -c/-config.
// Nothing happens when no file is given. Read or decode errors panic.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.BasePath, c.BasePath)
	setString(&config.StorageBackend, c.StorageBackend)
	setString(&config.HashAlgorithm, c.HashAlgorithm)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.Overwrite != nil {
		config.Overwrite = *c.Overwrite
	}
	if c.LockByName != nil {
		config.LockByName = *c.LockByName
	}
	if c.MaxConcurrentTransfers != nil {
		config.MaxConcurrentTransfers = *c.MaxConcurrentTransfers
	}
	if c.S3UseSSL != nil {
		config.S3UseSSL = *c.S3UseSSL
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
