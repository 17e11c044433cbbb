// Package cli provides the interactive upload client.
//
// It wires configuration, the upload journal, the gRPC client, the state hub
// and the upload scheduler, then runs a small REPL until the user exits or a
// termination signal arrives. Files handed to "upload" are queued and sent
// to the server by the scheduler, one per tick.
//
// Commands:
//
//	upload <path> [category=<c>] [title words...]
//	cancel <job_id>
//	status [job_id]
//	info <file_id>
//	find <hash>
//	download <file_id> <dest>
//	help
//	exit | quit
package cli
