// Package persistence opens the attendance database, applies the registered
// migrations and binds the Bun repositories to a shared unit of work.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-attendance/migrations"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// Config describes how to reach the database.
type Config struct {
	// Driver is "sqlite" or "postgres".
	Driver string
	DSN    string
	// MaxOpenConns defaults to 1 for SQLite so in-memory databases stay shared.
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the configured database and wraps it with the matching
// Bun dialect.
func Open(cfg Config) (*bun.DB, error) {
	dialect, err := migrations.NormalizeDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("persistence: dsn required")
	}

	var db *bun.DB
	switch dialect {
	case "postgres":
		sqldb, err := sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("persistence: open postgres: %w", err)
		}
		if cfg.MaxOpenConns > 0 {
			sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("persistence: open sqlite: %w", err)
		}
		maxOpen := cfg.MaxOpenConns
		if maxOpen <= 0 {
			maxOpen = 1
		}
		sqldb.SetMaxOpenConns(maxOpen)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// DialectName reports the normalized migration dialect for db.
func DialectName(db *bun.DB) string {
	if db == nil {
		return ""
	}
	name, err := migrations.NormalizeDialect(db.Dialect().Name().String())
	if err != nil {
		return ""
	}
	return name
}
