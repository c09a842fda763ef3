package records

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-attendance/internal/dberr"
	"github.com/goliatone/go-attendance/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed attendance repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

// Repository implements types.AttendanceRepository using Bun.
type Repository struct {
	store repository.Repository[*Record]
	clock types.Clock
	idGen types.IDGenerator
	db    *bun.DB
	conn  bun.IDB
}

// NewRepository constructs the default attendance repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("records: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepositoryWithConfig(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		}, nil)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	db := cfg.DB
	if db == nil {
		if withDB, ok := repo.(interface{ DB() *bun.DB }); ok {
			db = withDB.DB()
		}
	}
	if db == nil {
		return nil, errors.New("records: db required")
	}
	return &Repository{
		store: repo,
		clock: clock,
		idGen: idGen,
		db:    db,
		conn:  db,
	}, nil
}

var _ types.AttendanceRepository = (*Repository)(nil)

// WithTx returns a copy of the repository whose point reads and writes run on conn.
func (r *Repository) WithTx(conn bun.IDB) *Repository {
	clone := *r
	if conn != nil {
		clone.conn = conn
	}
	return &clone
}

// GetRecord returns the record for the user and day, or nil when none exists.
func (r *Repository) GetRecord(ctx context.Context, userID uuid.UUID, date types.Date) (*types.AttendanceRecord, error) {
	if userID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec := &Record{}
	err := r.conn.NewSelect().Model(rec).
		Where("user_id = ?", userID).
		Where("attendance_date = ?", date).
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

// CreateRecord inserts a new record; a duplicate (user, day) yields ErrConflict.
func (r *Repository) CreateRecord(ctx context.Context, record types.AttendanceRecord) (*types.AttendanceRecord, error) {
	if record.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	rec := fromDomain(record)
	if rec.ID == uuid.Nil {
		rec.ID = r.idGen.UUID()
	}
	now := r.clock.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	if _, err := r.conn.NewInsert().Model(rec).Exec(ctx); err != nil {
		mapped := dberr.Map(r.db, err)
		if dberr.IsUniqueViolation(mapped) || dberr.IsUniqueViolation(err) {
			return nil, types.ErrConflict
		}
		return nil, mapped
	}
	return toDomain(rec), nil
}

// UpdateRecord writes the record when the stored status still matches
// expected and the stored row has not been checked out.
func (r *Repository) UpdateRecord(ctx context.Context, record types.AttendanceRecord, expected types.AttendanceStatus) (*types.AttendanceRecord, error) {
	if record.ID == uuid.Nil {
		return nil, errors.New("records: record id required")
	}
	rec := fromDomain(record)
	rec.UpdatedAt = r.clock.Now()
	res, err := r.conn.NewUpdate().Model(rec).
		Column("check_in_time", "check_out_time", "status", "marked_by", "updated_at").
		Where("id = ?", rec.ID).
		Where("status = ?", string(expected)).
		Where("check_out_time IS NULL").
		Exec(ctx)
	if err != nil {
		return nil, dberr.Map(r.db, err)
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		if repository.IsSQLExpectedCountViolation(err) {
			return nil, types.ErrConflict
		}
		return nil, err
	}
	return toDomain(rec), nil
}

// ListRecords returns every record matching the filter ordered by day then
// user. Results are never paginated.
func (r *Repository) ListRecords(ctx context.Context, filter types.AttendanceFilter) ([]types.AttendanceRecord, error) {
	rows, _, err := r.store.List(ctx, filterCriteria(filter))
	if err != nil {
		return nil, err
	}
	out := make([]types.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, *toDomain(row))
	}
	return out, nil
}

func filterCriteria(filter types.AttendanceFilter) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.UserID != uuid.Nil {
			q = q.Where("user_id = ?", filter.UserID)
		}
		if !filter.From.IsZero() {
			q = q.Where("attendance_date >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			q = q.Where("attendance_date <= ?", filter.To)
		}
		return q.OrderExpr("attendance_date DESC").OrderExpr("user_id ASC").
			Limit(0).
			Offset(0)
	}
}

func fromDomain(record types.AttendanceRecord) *Record {
	return &Record{
		ID:             record.ID,
		UserID:         record.UserID,
		AttendanceDate: record.Date,
		CheckInTime:    cloneTime(record.CheckInTime),
		CheckOutTime:   cloneTime(record.CheckOutTime),
		Status:         string(record.Status),
		MarkedBy:       record.MarkedBy,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.AttendanceRecord {
	if rec == nil {
		return nil
	}
	return &types.AttendanceRecord{
		ID:           rec.ID,
		UserID:       rec.UserID,
		Date:         rec.AttendanceDate,
		CheckInTime:  cloneTime(rec.CheckInTime),
		CheckOutTime: cloneTime(rec.CheckOutTime),
		Status:       types.AttendanceStatus(rec.Status),
		MarkedBy:     rec.MarkedBy,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil || value.IsZero() {
		return nil
	}
	copy := *value
	return &copy
}
