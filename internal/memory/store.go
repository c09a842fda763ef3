// Package memory provides mutex guarded in-memory implementations of the
// attendance repositories for tests and examples.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/google/uuid"
)

type dayKey struct {
	user uuid.UUID
	date types.Date
}

// Store holds tokens, attendance records and the user directory. It doubles
// as a types.Transactor: units of work are serialized and rolled back by
// restoring a snapshot when fn fails.
type Store struct {
	txMu sync.Mutex

	mu      sync.RWMutex
	tokens  map[string]*types.AttendanceToken
	records map[dayKey]*types.AttendanceRecord
	users   map[uuid.UUID]bool
}

// NewStore provisions an empty store.
func NewStore() *Store {
	return &Store{
		tokens:  make(map[string]*types.AttendanceToken),
		records: make(map[dayKey]*types.AttendanceRecord),
		users:   make(map[uuid.UUID]bool),
	}
}

var (
	_ types.AttendanceTokenRepository = (*Store)(nil)
	_ types.AttendanceRepository      = (*Store)(nil)
	_ types.IdentityDirectory         = (*Store)(nil)
	_ types.Transactor                = (*Store)(nil)
)

// AddUser registers a user; inactive users exist but are not reconciled.
func (s *Store) AddUser(id uuid.UUID, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[id] = active
}

// UserExists implements types.IdentityDirectory.
func (s *Store) UserExists(_ context.Context, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

// ListActiveUsers implements types.IdentityDirectory.
func (s *Store) ListActiveUsers(context.Context) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(s.users))
	for id, active := range s.users {
		if active {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// RunInTx implements types.Transactor.
func (s *Store) RunInTx(ctx context.Context, fn func(context.Context, types.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(ctx, types.Repositories{Tokens: s, Attendance: s}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	tokens  map[string]types.AttendanceToken
	records map[dayKey]types.AttendanceRecord
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := storeSnapshot{
		tokens:  make(map[string]types.AttendanceToken, len(s.tokens)),
		records: make(map[dayKey]types.AttendanceRecord, len(s.records)),
	}
	for key, token := range s.tokens {
		snap.tokens[key] = *token
	}
	for key, record := range s.records {
		snap.records[key] = cloneRecord(*record)
	}
	return snap
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = make(map[string]*types.AttendanceToken, len(snap.tokens))
	for key, token := range snap.tokens {
		copy := token
		s.tokens[key] = &copy
	}
	s.records = make(map[dayKey]*types.AttendanceRecord, len(snap.records))
	for key, record := range snap.records {
		copy := record
		s.records[key] = &copy
	}
}

// CreateToken implements types.AttendanceTokenRepository.
func (s *Store) CreateToken(_ context.Context, token types.AttendanceToken) (*types.AttendanceToken, error) {
	raw := strings.TrimSpace(token.Token)
	if raw == "" {
		return nil, errors.New("memory: token value required")
	}
	if token.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[raw]; exists {
		return nil, types.ErrConflict
	}
	copy := token
	copy.Token = raw
	if copy.ID == uuid.Nil {
		copy.ID = uuid.New()
	}
	now := time.Now().UTC()
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = now
	}
	copy.UpdatedAt = copy.CreatedAt
	s.tokens[raw] = &copy
	out := copy
	return &out, nil
}

// GetActiveToken implements types.AttendanceTokenRepository.
func (s *Store) GetActiveToken(_ context.Context, token string) (*types.AttendanceToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.tokens[strings.TrimSpace(token)]
	if !ok || stored.Used {
		return nil, nil
	}
	out := *stored
	return &out, nil
}

// Token returns the stored token regardless of state. Useful in assertions.
func (s *Store) Token(token string) (types.AttendanceToken, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.tokens[strings.TrimSpace(token)]
	if !ok {
		return types.AttendanceToken{}, false
	}
	return *stored, true
}

// InvalidateActive implements types.AttendanceTokenRepository.
func (s *Store) InvalidateActive(_ context.Context, userID uuid.UUID, date types.Date, at time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, token := range s.tokens {
		if token.UserID == userID && token.Date == date && !token.Used {
			token.Used = true
			token.UsedAt = at
			token.UpdatedAt = at
			count++
		}
	}
	return count, nil
}

// ConsumeToken implements types.AttendanceTokenRepository.
func (s *Store) ConsumeToken(_ context.Context, token string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tokens[strings.TrimSpace(token)]
	if !ok || !stored.Usable(at) {
		return types.ErrInvalidToken
	}
	stored.Used = true
	stored.UsedAt = at
	stored.UpdatedAt = at
	return nil
}

// PurgeExpired implements types.AttendanceTokenRepository.
func (s *Store) PurgeExpired(_ context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for key, token := range s.tokens {
		if token.ExpiresAt.Before(before) {
			delete(s.tokens, key)
			count++
		}
	}
	return count, nil
}

// GetRecord implements types.AttendanceRepository.
func (s *Store) GetRecord(_ context.Context, userID uuid.UUID, date types.Date) (*types.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.records[dayKey{user: userID, date: date}]
	if !ok {
		return nil, nil
	}
	out := cloneRecord(*stored)
	return &out, nil
}

// CreateRecord implements types.AttendanceRepository.
func (s *Store) CreateRecord(_ context.Context, record types.AttendanceRecord) (*types.AttendanceRecord, error) {
	if record.UserID == uuid.Nil {
		return nil, types.ErrUserIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey{user: record.UserID, date: record.Date}
	if _, exists := s.records[key]; exists {
		return nil, types.ErrConflict
	}
	copy := cloneRecord(record)
	if copy.ID == uuid.Nil {
		copy.ID = uuid.New()
	}
	now := time.Now().UTC()
	if copy.CreatedAt.IsZero() {
		copy.CreatedAt = now
	}
	copy.UpdatedAt = now
	s.records[key] = &copy
	out := cloneRecord(copy)
	return &out, nil
}

// UpdateRecord implements types.AttendanceRepository.
func (s *Store) UpdateRecord(_ context.Context, record types.AttendanceRecord, expected types.AttendanceStatus) (*types.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey{user: record.UserID, date: record.Date}
	stored, ok := s.records[key]
	if !ok || stored.ID != record.ID || stored.Status != expected || stored.CheckOutTime != nil {
		return nil, types.ErrConflict
	}
	copy := cloneRecord(record)
	copy.CreatedAt = stored.CreatedAt
	copy.UpdatedAt = time.Now().UTC()
	s.records[key] = &copy
	out := cloneRecord(copy)
	return &out, nil
}

// ListRecords implements types.AttendanceRepository.
func (s *Store) ListRecords(_ context.Context, filter types.AttendanceFilter) ([]types.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.AttendanceRecord, 0)
	for _, record := range s.records {
		if filter.UserID != uuid.Nil && record.UserID != filter.UserID {
			continue
		}
		if !filter.From.IsZero() && record.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && record.Date.After(filter.To) {
			continue
		}
		out = append(out, cloneRecord(*record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].UserID.String() < out[j].UserID.String()
	})
	return out, nil
}

func cloneRecord(record types.AttendanceRecord) types.AttendanceRecord {
	copy := record
	if record.CheckInTime != nil {
		at := *record.CheckInTime
		copy.CheckInTime = &at
	}
	if record.CheckOutTime != nil {
		at := *record.CheckOutTime
		copy.CheckOutTime = &at
	}
	return copy
}
