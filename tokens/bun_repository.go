package tokens

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-attendance/internal/dberr"
	"github.com/goliatone/go-attendance/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed token repository.
type RepositoryConfig struct {
	DB    *bun.DB
	Clock types.Clock
}

// Repository implements types.AttendanceTokenRepository using Bun.
type Repository struct {
	clock types.Clock
	db    *bun.DB
	conn  bun.IDB
}

// NewRepository constructs the default token repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("tokens: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	return &Repository{clock: clock, db: cfg.DB, conn: cfg.DB}, nil
}

var _ types.AttendanceTokenRepository = (*Repository)(nil)

// WithTx returns a copy of the repository whose reads and writes run on conn.
func (r *Repository) WithTx(conn bun.IDB) *Repository {
	clone := *r
	if conn != nil {
		clone.conn = conn
	}
	return &clone
}

// CreateToken persists an attendance token record.
func (r *Repository) CreateToken(ctx context.Context, token types.AttendanceToken) (*types.AttendanceToken, error) {
	if token.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	if strings.TrimSpace(token.Token) == "" {
		return nil, errors.New("tokens: token value required")
	}
	rec := fromDomain(token)
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	now := r.clock.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	if _, err := r.conn.NewInsert().Model(rec).Exec(ctx); err != nil {
		mapped := dberr.Map(r.db, err)
		if dberr.IsUniqueViolation(mapped) || dberr.IsUniqueViolation(err) {
			return nil, types.ErrConflict
		}
		return nil, mapped
	}
	return toDomain(rec), nil
}

// GetActiveToken returns the unused token matching the raw value, or nil.
func (r *Repository) GetActiveToken(ctx context.Context, token string) (*types.AttendanceToken, error) {
	normalized := strings.TrimSpace(token)
	if normalized == "" {
		return nil, nil
	}
	rec := &Record{}
	err := r.conn.NewSelect().Model(rec).
		Where("token = ?", normalized).
		Where("used = ?", false).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if dberr.IsNoRows(err) {
			return nil, nil
		}
		return nil, dberr.Map(r.db, err)
	}
	return toDomain(rec), nil
}

// InvalidateActive marks all unused tokens for the user and day as used.
func (r *Repository) InvalidateActive(ctx context.Context, userID uuid.UUID, date types.Date, at time.Time) (int, error) {
	if userID == uuid.Nil {
		return 0, types.ErrUserIDRequired
	}
	at = at.UTC()
	res, err := r.conn.NewUpdate().Model((*Record)(nil)).
		Set("used = ?", true).
		Set("used_at = ?", at).
		Set("updated_at = ?", r.clock.Now().UTC()).
		Where("user_id = ?", userID).
		Where("attendance_date = ?", date).
		Where("used = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, dberr.Map(r.db, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// ConsumeToken flips the token to used when it is still unused and unexpired.
func (r *Repository) ConsumeToken(ctx context.Context, token string, at time.Time) error {
	normalized := strings.TrimSpace(token)
	if normalized == "" {
		return types.ErrInvalidToken
	}
	at = at.UTC()
	res, err := r.conn.NewUpdate().Model((*Record)(nil)).
		Set("used = ?", true).
		Set("used_at = ?", at).
		Set("updated_at = ?", at).
		Where("token = ?", normalized).
		Where("used = ?", false).
		Where("expires_at > ?", at).
		Exec(ctx)
	if err != nil {
		return dberr.Map(r.db, err)
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		if repository.IsSQLExpectedCountViolation(err) {
			return types.ErrInvalidToken
		}
		return err
	}
	return nil
}

// PurgeExpired deletes tokens that expired before the instant.
func (r *Repository) PurgeExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := r.conn.NewDelete().Model((*Record)(nil)).
		Where("expires_at < ?", before.UTC()).
		Exec(ctx)
	if err != nil {
		return 0, dberr.Map(r.db, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func fromDomain(token types.AttendanceToken) *Record {
	return &Record{
		ID:             token.ID,
		Token:          strings.TrimSpace(token.Token),
		UserID:         token.UserID,
		AttendanceDate: token.Date,
		ExpiresAt:      token.ExpiresAt.UTC(),
		Used:           token.Used,
		UsedAt:         timePtr(token.UsedAt),
		CreatedAt:      token.CreatedAt,
		UpdatedAt:      token.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.AttendanceToken {
	if rec == nil {
		return nil
	}
	return &types.AttendanceToken{
		ID:        rec.ID,
		Token:     rec.Token,
		UserID:    rec.UserID,
		Date:      rec.AttendanceDate,
		ExpiresAt: rec.ExpiresAt,
		Used:      rec.Used,
		UsedAt:    timeFromPtr(rec.UsedAt),
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func timePtr(value time.Time) *time.Time {
	if value.IsZero() {
		return nil
	}
	copy := value
	return &copy
}

func timeFromPtr(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}
