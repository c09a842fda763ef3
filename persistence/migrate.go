package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-attendance/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const (
	migrationsTable      = "attendance_migrations"
	migrationsLocksTable = "attendance_migration_locks"
)

// MigrateOption customizes Migrate.
type MigrateOption func(*migrateConfig)

type migrateConfig struct {
	sources  []fs.FS
	validate bool
}

// WithSources replaces the registered migration sources with explicit
// filesystems already rooted at the dialect directory.
func WithSources(sources ...fs.FS) MigrateOption {
	return func(cfg *migrateConfig) {
		cfg.sources = sources
	}
}

// WithSchemaValidation runs migrations.ValidateSchema after applying.
func WithSchemaValidation() MigrateOption {
	return func(cfg *migrateConfig) {
		cfg.validate = true
	}
}

// Migrate applies every pending migration for the database dialect and
// returns the names that ran.
func Migrate(ctx context.Context, db *bun.DB, opts ...MigrateOption) ([]string, error) {
	if db == nil {
		return nil, errors.New("persistence: db required")
	}
	dialect := DialectName(db)
	if dialect == "" {
		return nil, fmt.Errorf("persistence: unsupported dialect %s", db.Dialect().Name())
	}

	cfg := migrateConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.sources == nil {
		cfg.sources = migrations.Filesystems(dialect)
	}
	if len(cfg.sources) == 0 {
		return nil, errors.New("persistence: no migrations registered")
	}

	set := migrate.NewMigrations()
	for _, source := range cfg.sources {
		if err := set.Discover(source); err != nil {
			return nil, fmt.Errorf("persistence: discover migrations: %w", err)
		}
	}

	migrator := migrate.NewMigrator(db, set,
		migrate.WithTableName(migrationsTable),
		migrate.WithLocksTableName(migrationsLocksTable),
	)
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("persistence: init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("persistence: lock migrations: %w", err)
	}
	defer func() {
		_ = migrator.Unlock(ctx)
	}()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("persistence: migrate: %w", err)
	}

	applied := make([]string, 0)
	if group != nil && !group.IsZero() {
		for _, migration := range group.Migrations {
			applied = append(applied, migration.Name)
		}
	}

	if cfg.validate {
		if err := migrations.ValidateSchema(ctx, db.DB, dialect); err != nil {
			return applied, err
		}
	}
	return applied, nil
}
