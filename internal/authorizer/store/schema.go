package store

import "embed"

// sqlSchemas embeds the capability-table migrations at compile time, the
// same convention internal/db/schemas.go uses for the daemon's own
// embedded migrations.
//
//go:embed migrations/*.sql
var sqlSchemas embed.FS
