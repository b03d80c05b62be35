// Package migrations embeds the goose SQL migration files so the server
// binary can apply them without a deployed migrations directory.
package migrations

import "embed"

// FS holds the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
