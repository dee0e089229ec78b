package db

import "embed"

// migrationFS holds the goose migrations of the catalog schema.
//
//go:embed migrations/*.sql
var migrationFS embed.FS
