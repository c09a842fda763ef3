// Package bootstrap registers the minimal users table migration. Import it for
// side effects when the host does not provide its own identity schema.
package bootstrap

import (
	attendance "github.com/goliatone/go-attendance"
	"github.com/goliatone/go-attendance/migrations"
)

// SourceName identifies the users bootstrap migration source.
const SourceName = "attendance.bootstrap"

func init() {
	migrations.Register(migrations.Source{
		Name:    SourceName,
		Dialect: attendance.BootstrapMigrations,
	})
}
