package persistence

import "embed"

// SchemaFS holds the goose migrations for the partner module.
//
//go:embed schema/*.sql
var SchemaFS embed.FS
