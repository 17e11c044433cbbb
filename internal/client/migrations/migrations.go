// Package migrations embeds the client journal's goose SQL migrations.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
