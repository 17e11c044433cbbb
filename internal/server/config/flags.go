package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/scimaterials/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-f string   storage base path
//	-o          overwrite files with the same name
//	-n          serialize uploads sharing a file name
//	-k string   storage backend: local, s3, minio
//	-x string   hash algorithm: sha256, blake2b
//	-m int      max concurrent transfers
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Unknown arguments are filtered out with flagx.FilterArgs first. A flag
// with an unparsable value panics, like the JSON loader does.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-d", "-s", "-f", "-k", "-x", "-m", "-u", "-p", "-b", "-g", "-e"},
		"-o", "-n")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.BasePath, "f", config.BasePath, "storage base path")
	fs.BoolVar(&config.Overwrite, "o", config.Overwrite, "overwrite files with the same name")
	fs.BoolVar(&config.LockByName, "n", config.LockByName, "serialize uploads of the same file name")
	fs.StringVar(&config.StorageBackend, "k", config.StorageBackend, "storage backend (local, s3, minio)")
	fs.StringVar(&config.HashAlgorithm, "x", config.HashAlgorithm, "hash algorithm (sha256, blake2b)")
	fs.IntVar(&config.MaxConcurrentTransfers, "m", config.MaxConcurrentTransfers, "max concurrent transfers")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
