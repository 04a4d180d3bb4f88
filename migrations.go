package blog

import (
	"embed"
)

//go:embed data/sql/migrations/*.sql
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded catalog migration files. Pass the
// result to catalog.ApplyMigrations when managing schema through SQL files.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}
