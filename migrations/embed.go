// Package migrations embeds the versioned PostgreSQL schema.
package migrations

import "embed"

// FS holds the golang-migrate up/down files
//
//go:embed *.sql
var FS embed.FS
