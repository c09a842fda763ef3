package types

import "errors"

var (
	// ErrUserIDRequired indicates a user identifier was omitted.
	ErrUserIDRequired = errors.New("go-attendance: user id required")
	// ErrActorRequired indicates an operator reference was not supplied.
	ErrActorRequired = errors.New("go-attendance: actor reference required")
	// ErrUserNotFound indicates the identity directory does not know the user.
	ErrUserNotFound = errors.New("go-attendance: user not found")
	// ErrAlreadyMarked indicates the day is closed and no token can be issued.
	ErrAlreadyMarked = errors.New("go-attendance: attendance already marked for the day")
	// ErrInvalidToken indicates the raw token matches no unused token.
	ErrInvalidToken = errors.New("go-attendance: invalid attendance token")
	// ErrTokenExpired indicates the token existed but its TTL lapsed.
	ErrTokenExpired = errors.New("go-attendance: attendance token expired")
	// ErrAttendanceComplete indicates a valid token was presented for a closed day.
	ErrAttendanceComplete = errors.New("go-attendance: attendance already complete for the day")
	// ErrDateRequired indicates an operation needed an explicit day.
	ErrDateRequired = errors.New("go-attendance: date required")
	// ErrInvalidDateRange indicates the range end precedes its start.
	ErrInvalidDateRange = errors.New("go-attendance: invalid date range")
	// ErrConflict indicates a concurrent write for the same user and day won.
	ErrConflict = errors.New("go-attendance: concurrent attendance update")

	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-attendance: service not ready")
	// ErrMissingTokenRepository occurs when no token repository was supplied.
	ErrMissingTokenRepository = errors.New("go-attendance: missing token repository")
	// ErrMissingAttendanceRepository occurs when no attendance repository was supplied.
	ErrMissingAttendanceRepository = errors.New("go-attendance: missing attendance repository")
	// ErrMissingIdentityDirectory occurs when no identity directory was supplied.
	ErrMissingIdentityDirectory = errors.New("go-attendance: missing identity directory")
)
