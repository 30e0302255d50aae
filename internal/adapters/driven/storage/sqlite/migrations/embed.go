// Package migrations holds the numbered schema files applied by the SQLite
// document store. Only *.up.sql files are run; the matching .down.sql files
// document how to reverse each step.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
