package migrations

import (
	attendance "github.com/goliatone/go-attendance"
)

// CoreSourceName identifies the attendance tables migration source.
const CoreSourceName = "attendance.core"

func init() {
	Register(Source{
		Name:    CoreSourceName,
		Dialect: attendance.CoreMigrations,
	})
}
