// Package events publishes attendance activity to NATS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-attendance/pkg/types"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn the sink needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Message is the JSON payload published for each activity record.
type Message struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	ActorID    uuid.UUID      `json:"actor_id,omitempty"`
	Verb       string         `json:"verb"`
	ObjectType string         `json:"object_type"`
	ObjectID   string         `json:"object_id"`
	Channel    string         `json:"channel,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NATSSink implements types.ActivitySink. Records are published on
// prefix + verb, e.g. "events.attendance.checked_in".
type NATSSink struct {
	pub    Publisher
	prefix string
	logger types.Logger
}

// SinkOption customizes the sink.
type SinkOption func(*NATSSink)

// WithSubjectPrefix prepends prefix to every subject.
func WithSubjectPrefix(prefix string) SinkOption {
	return func(s *NATSSink) {
		s.prefix = prefix
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger types.Logger) SinkOption {
	return func(s *NATSSink) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewNATSSink wraps a publisher, normally a *nats.Conn.
func NewNATSSink(pub Publisher, opts ...SinkOption) *NATSSink {
	s := &NATSSink{pub: pub, logger: types.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

var _ types.ActivitySink = (*NATSSink)(nil)

// Log implements types.ActivitySink.
func (s *NATSSink) Log(ctx context.Context, record types.ActivityRecord) error {
	if s == nil || s.pub == nil {
		return errors.New("go-attendance: nats publisher not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	verb := strings.TrimSpace(record.Verb)
	if verb == "" {
		return errors.New("go-attendance: activity verb required")
	}
	payload, err := json.Marshal(Message{
		ID:         record.ID,
		UserID:     record.UserID,
		ActorID:    record.ActorID,
		Verb:       verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Channel:    record.Channel,
		Data:       record.Data,
		OccurredAt: record.OccurredAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}
	subject := s.prefix + verb
	s.logger.Debug("publishing attendance activity", "subject", subject)
	return s.pub.Publish(subject, payload)
}

// Connect dials NATS with a client name so connections are easy to spot.
func Connect(url string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name("go-attendance"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return conn, nil
}
