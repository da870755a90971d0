// Package migrations embeds the SQL schema of the self-hosted backend.
package migrations

import "embed"

// FS holds goose migration files.
//
//go:embed *.sql
var FS embed.FS
