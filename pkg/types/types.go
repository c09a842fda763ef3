package types

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies the operator or user that triggered a mutation.
type ActorRef struct {
	ID   uuid.UUID
	Type string
}

// ActivityRecord describes sink inputs emitted after attendance mutations.
type ActivityRecord struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Verb       string
	ObjectType string
	ObjectID   string
	Channel    string
	Data       map[string]any
	OccurredAt time.Time
}

// ActivitySink is the minimal DI contract for emitting activity. Keep it stable
// and limited to Log so hosts can swap sinks (NATS, audit tables, logs).
type ActivitySink interface {
	Log(context.Context, ActivityRecord) error
}

// AttendanceEvent is emitted after a record is created or advanced.
type AttendanceEvent struct {
	UserID     uuid.UUID
	ActorID    uuid.UUID
	Date       Date
	FromStatus AttendanceStatus
	ToStatus   AttendanceStatus
	Record     AttendanceRecord
	OccurredAt time.Time
}

// ReconcileSummary reports the outcome of a reconciliation sweep.
type ReconcileSummary struct {
	Date    Date
	Users   int
	Created int
	Skipped int
	Failed  int
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterAttendanceChange func(context.Context, AttendanceEvent)
	AfterReconcile        func(context.Context, ReconcileSummary)
	AfterActivity         func(context.Context, ActivityRecord)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always reports the same instant. Useful in tests and replays.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.At }

// Today returns the calendar day of the clock's current instant in loc.
func Today(clock Clock, loc *time.Location) Date {
	if clock == nil {
		clock = SystemClock{}
	}
	return DateOf(clock.Now(), loc)
}

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}
