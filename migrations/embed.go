// Package migrations embeds the goose SQL migration files.
package migrations

import "embed"

// FS contains all SQL migration files applied at startup.
//
//go:embed *.sql
var FS embed.FS
