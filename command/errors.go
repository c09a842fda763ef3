package command

import (
	"errors"

	"github.com/goliatone/go-attendance/pkg/types"
)

var (
	// ErrUserIDRequired occurs when a command omits the target user.
	ErrUserIDRequired = types.ErrUserIDRequired
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrUserNotFound indicates the identity directory does not know the user.
	ErrUserNotFound = types.ErrUserNotFound
	// ErrAlreadyMarked indicates the day is closed for issuance or marking.
	ErrAlreadyMarked = types.ErrAlreadyMarked
	// ErrInvalidToken indicates the token matches no unused token.
	ErrInvalidToken = types.ErrInvalidToken
	// ErrTokenExpired indicates the token TTL lapsed.
	ErrTokenExpired = types.ErrTokenExpired
	// ErrAttendanceComplete indicates a scan was presented for a closed day.
	ErrAttendanceComplete = types.ErrAttendanceComplete
	// ErrConflict indicates a concurrent write for the same user and day won.
	ErrConflict = types.ErrConflict

	// ErrTokenRequired indicates a scan was submitted without a token.
	ErrTokenRequired = errors.New("go-attendance: token required")
	// ErrDateRequired indicates a command needed an explicit day.
	ErrDateRequired = types.ErrDateRequired
	// ErrInvalidDateRange indicates the range end precedes its start.
	ErrInvalidDateRange = types.ErrInvalidDateRange
	// ErrStatusNotMarkable indicates an operator attempted to mark a scan status.
	ErrStatusNotMarkable = errors.New("go-attendance: status cannot be marked by an operator")
	// ErrFeatureDisabled indicates the workflow is disabled via feature gate.
	ErrFeatureDisabled = errors.New("go-attendance: feature disabled")
	// ErrMissingTransactor occurs when a command needing a unit of work has none.
	ErrMissingTransactor = errors.New("go-attendance: missing transactor")
)
