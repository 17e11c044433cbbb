// Package client talks to the file server.
//
// GRPCClient implements Client over the FileService gRPC contract. It attaches
// the configured access token to every call, streams uploads in
// common.ChunkSize pieces and turns gRPC status codes into upload failure
// codes (see FailureCode) or sentinel errors (see mapError).
//
// InitDatabase opens the local SQLite journal and applies its migrations.
package client
