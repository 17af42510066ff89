package postgres

import "embed"

// Migrations holds the catalog schema, applied at startup.
//
//go:embed migrations/*.up.sql
var Migrations embed.FS
