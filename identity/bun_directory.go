// Package identity exposes the host users table as the narrow directory the
// attendance workflows depend on.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-attendance/internal/dberr"
	"github.com/goliatone/go-attendance/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DirectoryConfig wires the Bun-backed identity directory.
type DirectoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*UserRecord]
}

// Directory implements types.IdentityDirectory over the users table. Only
// point lookups go through the cache; the active user sweep always reads the
// store.
type Directory struct {
	users        repository.Repository[*UserRecord]
	base         repository.Repository[*UserRecord]
	activeStatus string
}

// NewDirectory constructs the directory, optionally wrapping the store with
// the go-repository-cache decorator.
func NewDirectory(cfg DirectoryConfig, opts ...DirectoryOption) (*Directory, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("identity: db or repository required")
	}
	options := applyDirectoryOptions(opts)

	base := cfg.Repository
	if base == nil {
		base = newBaseUserRepository(cfg.DB)
	}
	repo := base
	if options.CacheEnabled {
		if _, already := repo.(*repositorycache.CachedRepository[*UserRecord]); !already {
			cacheCfg := cache.DefaultConfig()
			if options.CacheConfig != nil {
				cacheCfg = *options.CacheConfig
			}
			cacheService, err := cache.NewCacheService(cacheCfg)
			if err != nil {
				return nil, fmt.Errorf("identity: cache service: %w", err)
			}
			repo = repositorycache.New(repo, cacheService, cache.NewDefaultKeySerializer())
		}
	}
	return &Directory{users: repo, base: base, activeStatus: options.ActiveStatus}, nil
}

var _ types.IdentityDirectory = (*Directory)(nil)

// UserExists reports whether the users table holds the identifier.
func (d *Directory) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, types.ErrUserIDRequired
	}
	_, err := d.users.GetByID(ctx, userID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) || dberr.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListActiveUsers returns the identifiers of every active user ordered by id.
func (d *Directory) ListActiveUsers(ctx context.Context) ([]uuid.UUID, error) {
	rows, _, err := d.base.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("status = ?", d.activeStatus).
			OrderExpr("id ASC").
			Limit(0).
			Offset(0)
	})
	if err != nil {
		return nil, err
	}
	out := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		if row != nil && row.ID != uuid.Nil {
			out = append(out, row.ID)
		}
	}
	return out, nil
}

func newBaseUserRepository(db *bun.DB) repository.Repository[*UserRecord] {
	return repository.NewRepositoryWithConfig(db, repository.ModelHandlers[*UserRecord]{
		NewRecord: func() *UserRecord { return &UserRecord{} },
		GetID: func(rec *UserRecord) uuid.UUID {
			if rec == nil {
				return uuid.Nil
			}
			return rec.ID
		},
		SetID: func(rec *UserRecord, id uuid.UUID) {
			if rec != nil {
				rec.ID = id
			}
		},
	}, nil)
}
