// Package migrations embeds the SQLite schema.
package migrations

import "embed"

// FS holds the *.up.sql migration files, applied in name order.
//
//go:embed *.up.sql
var FS embed.FS
