package db

import "embed"

// MigrationFS migraciones SQL embebidas; las aplica internal/db/migrate (cmd/migrate y el arranque de cmd/api).
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
