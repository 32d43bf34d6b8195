// Package migrations holds the goose SQL migrations for the contact store.
package migrations

import "embed"

// FS contains all *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
