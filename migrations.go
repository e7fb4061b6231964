package sitekit

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded catalog migration files.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
