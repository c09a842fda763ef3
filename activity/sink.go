package activity

import (
	"context"
	"errors"

	"github.com/goliatone/go-attendance/pkg/types"
)

// FanOutSink forwards each record to every configured sink. All sinks are
// attempted; their errors are joined.
type FanOutSink struct {
	sinks []types.ActivitySink
}

// NewFanOutSink skips nil sinks.
func NewFanOutSink(sinks ...types.ActivitySink) *FanOutSink {
	out := make([]types.ActivitySink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			out = append(out, sink)
		}
	}
	return &FanOutSink{sinks: out}
}

var _ types.ActivitySink = (*FanOutSink)(nil)

// Log implements types.ActivitySink.
func (s *FanOutSink) Log(ctx context.Context, record types.ActivityRecord) error {
	if s == nil {
		return nil
	}
	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Log(ctx, cloneRecord(record)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func cloneRecord(record types.ActivityRecord) types.ActivityRecord {
	record.Data = cloneMap(record.Data)
	return record
}
