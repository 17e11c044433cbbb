// Package config loads runtime configuration for the upload client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "upload_interval": "30s",
//	  "online_check_interval": "10s",
//	  "access_token": "eyJ...",
//	  "queue_capacity": 100,
//	  "journal_path": "uploads.db",
//	  "author_id": "lab-42"
//	}
package config
