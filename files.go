package attendance

import (
	"embed"
	"io/fs"
)

// MigrationsFS contains the attendance_records and attendance_tokens schema.
//
// Files are grouped per dialect so bun/migrate can discover a flat directory:
//   - data/sql/migrations/postgres/*.sql
//   - data/sql/migrations/sqlite/*.sql
//
//go:embed data/sql/migrations
var MigrationsFS embed.FS

// BootstrapMigrationsFS contains a minimal users table for hosts that do not
// ship their own identity schema.
//
//go:embed data/sql/bootstrap
var BootstrapMigrationsFS embed.FS

// CoreMigrations returns the core migrations rooted at the dialect directory
// ("postgres" or "sqlite").
func CoreMigrations(dialect string) (fs.FS, error) {
	return fs.Sub(MigrationsFS, "data/sql/migrations/"+dialect)
}

// BootstrapMigrations returns the users bootstrap migrations for the dialect.
func BootstrapMigrations(dialect string) (fs.FS, error) {
	return fs.Sub(BootstrapMigrationsFS, "data/sql/bootstrap/"+dialect)
}
