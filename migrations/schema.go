package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SchemaCheck describes a table and the columns go-attendance reads from it.
type SchemaCheck struct {
	Table   string
	Columns []string
}

// IdentitySchemaChecks covers the host owned users table. Hosts that skip the
// bootstrap migration must still expose these columns.
var IdentitySchemaChecks = []SchemaCheck{
	{Table: "users", Columns: []string{"id", "status"}},
}

// CoreSchemaChecks covers the tables created by the core migrations.
var CoreSchemaChecks = []SchemaCheck{
	{
		Table: "attendance_records",
		Columns: []string{
			"id", "user_id", "attendance_date", "check_in_time",
			"check_out_time", "status", "marked_by", "created_at", "updated_at",
		},
	},
	{
		Table: "attendance_tokens",
		Columns: []string{
			"id", "token", "user_id", "attendance_date", "expires_at",
			"used", "used_at", "created_at", "updated_at",
		},
	},
	{
		Table: "attendance_activity",
		Columns: []string{
			"id", "user_id", "actor_id", "verb", "object_type",
			"object_id", "channel", "data", "created_at",
		},
	},
}

// SchemaOption customizes schema validation.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	checks []SchemaCheck
}

// WithSchemaChecks replaces the default checks with a custom list.
func WithSchemaChecks(checks ...SchemaCheck) SchemaOption {
	return func(cfg *schemaConfig) {
		cfg.checks = checks
	}
}

// SchemaValidationError summarizes missing tables and columns.
type SchemaValidationError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *SchemaValidationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if len(e.MissingTables) > 0 {
		parts = append(parts, "missing tables: "+strings.Join(e.MissingTables, ", "))
	}
	if len(e.MissingColumns) > 0 {
		tables := make([]string, 0, len(e.MissingColumns))
		for table := range e.MissingColumns {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		cols := make([]string, 0, len(tables))
		for _, table := range tables {
			missing := e.MissingColumns[table]
			sort.Strings(missing)
			cols = append(cols, fmt.Sprintf("%s(%s)", table, strings.Join(missing, ", ")))
		}
		parts = append(parts, "missing columns: "+strings.Join(cols, "; "))
	}
	if len(parts) == 0 {
		return "migrations: schema validation failed"
	}
	return "migrations: schema validation failed: " + strings.Join(parts, "; ")
}

// NormalizeDialect maps driver and dialect aliases onto "postgres" or "sqlite".
func NormalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "pg", "pgx":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

// ValidateSchema ensures the tables go-attendance touches expose the expected
// columns. It defaults to the identity and core checks combined.
func ValidateSchema(ctx context.Context, db *sql.DB, dialect string, opts ...SchemaOption) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return err
	}

	cfg := schemaConfig{
		checks: append(append([]SchemaCheck{}, IdentitySchemaChecks...), CoreSchemaChecks...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	missingTables := make([]string, 0)
	missingColumns := make(map[string][]string)
	for _, check := range cfg.checks {
		if strings.TrimSpace(check.Table) == "" {
			continue
		}
		cols, err := fetchColumns(ctx, db, normalized, check.Table)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			missingTables = append(missingTables, check.Table)
			continue
		}
		for _, col := range check.Columns {
			name := strings.ToLower(strings.TrimSpace(col))
			if name != "" && !cols[name] {
				missingColumns[check.Table] = append(missingColumns[check.Table], name)
			}
		}
	}

	if len(missingTables) == 0 && len(missingColumns) == 0 {
		return nil
	}
	sort.Strings(missingTables)
	return &SchemaValidationError{
		MissingTables:  missingTables,
		MissingColumns: missingColumns,
	}
}

func fetchColumns(ctx context.Context, db *sql.DB, dialect, table string) (map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	switch dialect {
	case "postgres":
		rows, err = db.QueryContext(ctx, `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = current_schema() AND table_name = $1
		`, table)
	default:
		rows, err = db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
