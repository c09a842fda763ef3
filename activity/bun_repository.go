package activity

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Filter narrows activity listings. Zero values leave a field unconstrained.
type Filter struct {
	UserID   uuid.UUID
	ActorID  uuid.UUID
	Verbs    []string
	ObjectID string
	Since    time.Time
	Until    time.Time
	Limit    int
	Offset   int
}

// Page is a slice of the activity feed.
type Page struct {
	Records    []types.ActivityRecord
	Total      int
	NextOffset int
	HasMore    bool
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// RepositoryConfig wires the Bun-backed activity repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*LogEntry]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

// Repository persists activity logs and exposes the audit feed.
type Repository struct {
	repo  repository.Repository[*LogEntry]
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs a repository that doubles as an ActivitySink.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("activity: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepositoryWithConfig(cfg.DB, repository.ModelHandlers[*LogEntry]{
			NewRecord: func() *LogEntry { return &LogEntry{} },
			GetID: func(entry *LogEntry) uuid.UUID {
				if entry == nil {
					return uuid.Nil
				}
				return entry.ID
			},
			SetID: func(entry *LogEntry, id uuid.UUID) {
				if entry != nil {
					entry.ID = id
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
	return &Repository{repo: repo, clock: clock, idGen: idGen}, nil
}

var _ types.ActivitySink = (*Repository)(nil)

// Log persists an activity record.
func (r *Repository) Log(ctx context.Context, record types.ActivityRecord) error {
	entry := toLogEntry(record)
	if entry.ID == uuid.Nil {
		entry.ID = r.idGen.UUID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.clock.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	_, err := r.repo.Create(ctx, entry)
	return err
}

// ListActivity returns the newest entries first.
func (r *Repository) ListActivity(ctx context.Context, filter Filter) (Page, error) {
	limit, offset := normalizePagination(filter.Limit, filter.Offset)
	rows, total, err := r.repo.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		q = q.OrderExpr("created_at DESC").OrderExpr("id ASC").
			Limit(limit).
			Offset(offset)
		return applyFilter(q, filter)
	})
	if err != nil {
		return Page{}, err
	}
	out := make([]types.ActivityRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toActivityRecord(row))
	}
	return Page{
		Records:    out,
		Total:      total,
		NextOffset: offset + limit,
		HasMore:    offset+limit < total,
	}, nil
}

func applyFilter(q *bun.SelectQuery, filter Filter) *bun.SelectQuery {
	if filter.UserID != uuid.Nil {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.ActorID != uuid.Nil {
		q = q.Where("actor_id = ?", filter.ActorID)
	}
	if len(filter.Verbs) > 0 {
		q = q.Where("verb IN (?)", bun.In(filter.Verbs))
	}
	if filter.ObjectID != "" {
		q = q.Where("object_id = ?", filter.ObjectID)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		q = q.Where("created_at <= ?", filter.Until.UTC())
	}
	return q
}

func toLogEntry(record types.ActivityRecord) *LogEntry {
	return &LogEntry{
		ID:         record.ID,
		UserID:     record.UserID,
		ActorID:    record.ActorID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Channel:    record.Channel,
		Data:       cloneMap(record.Data),
		CreatedAt:  record.OccurredAt,
	}
}

func toActivityRecord(entry *LogEntry) types.ActivityRecord {
	if entry == nil {
		return types.ActivityRecord{}
	}
	return types.ActivityRecord{
		ID:         entry.ID,
		UserID:     entry.UserID,
		ActorID:    entry.ActorID,
		Verb:       entry.Verb,
		ObjectType: entry.ObjectType,
		ObjectID:   entry.ObjectID,
		Channel:    entry.Channel,
		Data:       cloneMap(entry.Data),
		OccurredAt: entry.CreatedAt,
	}
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func normalizePagination(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
