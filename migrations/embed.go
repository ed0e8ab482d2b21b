// Package migrations holds the schema shipped inside the server binary.
package migrations

import "embed"

// FS contains the numbered SQL files applied by db.Migrator.
//
//go:embed *.sql
var FS embed.FS
