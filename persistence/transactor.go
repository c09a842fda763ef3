package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/goliatone/go-attendance/records"
	"github.com/goliatone/go-attendance/tokens"
	"github.com/uptrace/bun"
)

// Transactor runs units of work on a Bun transaction, rebinding the token and
// attendance repositories to it.
type Transactor struct {
	db      *bun.DB
	tokens  *tokens.Repository
	records *records.Repository
	opts    *sql.TxOptions
}

// NewTransactor binds both repositories to db transactions.
func NewTransactor(db *bun.DB, tokenRepo *tokens.Repository, recordRepo *records.Repository) (*Transactor, error) {
	if db == nil {
		return nil, errors.New("persistence: db required")
	}
	if tokenRepo == nil {
		return nil, types.ErrMissingTokenRepository
	}
	if recordRepo == nil {
		return nil, types.ErrMissingAttendanceRepository
	}
	return &Transactor{db: db, tokens: tokenRepo, records: recordRepo}, nil
}

// WithTxOptions sets the isolation options used for every transaction.
func (t *Transactor) WithTxOptions(opts *sql.TxOptions) *Transactor {
	clone := *t
	clone.opts = opts
	return &clone
}

var _ types.Transactor = (*Transactor)(nil)

// RunInTx implements types.Transactor.
func (t *Transactor) RunInTx(ctx context.Context, fn func(context.Context, types.Repositories) error) error {
	return t.db.RunInTx(ctx, t.opts, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, types.Repositories{
			Tokens:     t.tokens.WithTx(tx),
			Attendance: t.records.WithTx(tx),
		})
	})
}
