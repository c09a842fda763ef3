package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-attendance/pkg/types"
)

// ActivityStore records activity in memory.
type ActivityStore struct {
	mu      sync.Mutex
	records []types.ActivityRecord
}

// NewActivityStore provisions an empty sink.
func NewActivityStore() *ActivityStore {
	return &ActivityStore{}
}

var _ types.ActivitySink = (*ActivityStore)(nil)

// Log implements types.ActivitySink.
func (s *ActivityStore) Log(_ context.Context, record types.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Records returns a copy of the logged activity.
func (s *ActivityStore) Records() []types.ActivityRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.ActivityRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Verbs lists logged verbs in order.
func (s *ActivityStore) Verbs() []string {
	records := s.Records()
	out := make([]string, 0, len(records))
	for _, record := range records {
		out = append(out, record.Verb)
	}
	return out
}
