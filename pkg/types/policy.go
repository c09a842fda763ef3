package types

import (
	"errors"
	"sort"
)

// ErrTransitionNotAllowed reports that the target attendance state is not
// reachable from the current state according to the configured policy.
var ErrTransitionNotAllowed = errors.New("go-attendance: attendance transition not allowed")

// AttendanceStatusNone is the source state of a day without a record.
const AttendanceStatusNone AttendanceStatus = ""

// TransitionPolicy validates attendance status transitions.
type TransitionPolicy interface {
	Validate(current, target AttendanceStatus) error
	AllowedTargets(current AttendanceStatus) []AttendanceStatus
}

// StaticTransitionPolicy enforces a fixed transition graph.
type StaticTransitionPolicy struct {
	graph map[AttendanceStatus]map[AttendanceStatus]struct{}
}

// NewStaticTransitionPolicy creates a policy from a transition graph. Use
// AttendanceStatusNone as the key for days that have no record yet.
func NewStaticTransitionPolicy(graph map[AttendanceStatus][]AttendanceStatus) *StaticTransitionPolicy {
	internal := make(map[AttendanceStatus]map[AttendanceStatus]struct{}, len(graph))
	for from, targets := range graph {
		targetSet := make(map[AttendanceStatus]struct{}, len(targets))
		for _, to := range targets {
			if to == AttendanceStatusNone {
				continue
			}
			targetSet[to] = struct{}{}
		}
		internal[from] = targetSet
	}
	return &StaticTransitionPolicy{graph: internal}
}

// DefaultScanPolicy returns the scan state machine:
// none→CHECKED_IN→CHECKED_OUT, with WFH days still accepting a check in.
// ABSENT, LEAVE and CHECKED_OUT are terminal.
func DefaultScanPolicy() *StaticTransitionPolicy {
	return NewStaticTransitionPolicy(map[AttendanceStatus][]AttendanceStatus{
		AttendanceStatusNone:      {AttendanceStatusCheckedIn},
		AttendanceStatusWFH:       {AttendanceStatusCheckedIn},
		AttendanceStatusCheckedIn: {AttendanceStatusCheckedOut},
	})
}

// DefaultMarkPolicy returns the graph operators may drive by hand. Days
// already touched by a scan are excluded by the caller, not by the graph.
func DefaultMarkPolicy() *StaticTransitionPolicy {
	return NewStaticTransitionPolicy(map[AttendanceStatus][]AttendanceStatus{
		AttendanceStatusNone:   {AttendanceStatusLeave, AttendanceStatusWFH, AttendanceStatusAbsent},
		AttendanceStatusAbsent: {AttendanceStatusLeave, AttendanceStatusWFH},
		AttendanceStatusLeave:  {AttendanceStatusAbsent, AttendanceStatusWFH},
		AttendanceStatusWFH:    {AttendanceStatusLeave, AttendanceStatusAbsent},
	})
}

// Validate ensures the target is allowed from the current state.
func (p *StaticTransitionPolicy) Validate(current, target AttendanceStatus) error {
	if p == nil || target == AttendanceStatusNone {
		return ErrTransitionNotAllowed
	}
	targets, ok := p.graph[current]
	if !ok {
		return ErrTransitionNotAllowed
	}
	if _, ok := targets[target]; !ok {
		return ErrTransitionNotAllowed
	}
	return nil
}

// AllowedTargets returns the sorted valid targets from the provided state.
func (p *StaticTransitionPolicy) AllowedTargets(current AttendanceStatus) []AttendanceStatus {
	if p == nil {
		return nil
	}
	targets := p.graph[current]
	if len(targets) == 0 {
		return nil
	}
	out := make([]AttendanceStatus, 0, len(targets))
	for target := range targets {
		out = append(out, target)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
