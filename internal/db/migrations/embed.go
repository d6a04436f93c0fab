// Package migrations holds the goose SQL migrations for the ACH tables
package migrations

import "embed"

// FS contains every migration file
//
//go:embed *.sql
var FS embed.FS
