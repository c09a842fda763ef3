package command

import (
	"errors"

	"github.com/goliatone/go-attendance/pkg/types"
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to rich errors so transports can render distinct messages.
const (
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeAlreadyMarked      = "ALREADY_MARKED"
	TextCodeInvalidToken       = "INVALID_TOKEN"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeAttendanceComplete = "ATTENDANCE_COMPLETE"
	TextCodeConflict           = "CONFLICT"
	TextCodeValidation         = "VALIDATION_FAILED"
	TextCodeFeatureDisabled    = "FEATURE_DISABLED"
)

// RichError maps the attendance taxonomy onto go-errors so transports can
// render category, code and text code without string matching. Errors that
// already carry go-errors metadata are returned as is.
func RichError(err error) error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr
	}

	category := goerrors.CategoryInternal
	code := goerrors.CodeInternal
	textCode := ""
	message := "go-attendance: operation failed"
	switch {
	case errors.Is(err, types.ErrUserNotFound):
		category, code, textCode = goerrors.CategoryNotFound, goerrors.CodeNotFound, TextCodeUserNotFound
		message = "go-attendance: user not found"
	case errors.Is(err, types.ErrInvalidToken):
		category, code, textCode = goerrors.CategoryAuth, goerrors.CodeUnauthorized, TextCodeInvalidToken
		message = "go-attendance: invalid attendance token"
	case errors.Is(err, types.ErrTokenExpired):
		category, code, textCode = goerrors.CategoryAuth, goerrors.CodeUnauthorized, TextCodeTokenExpired
		message = "go-attendance: attendance token expired"
	case errors.Is(err, types.ErrAlreadyMarked):
		category, code, textCode = goerrors.CategoryValidation, goerrors.CodeBadRequest, TextCodeAlreadyMarked
		message = "go-attendance: attendance already marked"
	case errors.Is(err, types.ErrAttendanceComplete):
		category, code, textCode = goerrors.CategoryValidation, goerrors.CodeBadRequest, TextCodeAttendanceComplete
		message = "go-attendance: attendance already complete"
	case errors.Is(err, types.ErrConflict):
		textCode = TextCodeConflict
		message = "go-attendance: concurrent attendance update"
	case errors.Is(err, ErrFeatureDisabled):
		category, code, textCode = goerrors.CategoryAuthz, goerrors.CodeForbidden, TextCodeFeatureDisabled
		message = "go-attendance: feature disabled"
	case errors.Is(err, types.ErrUserIDRequired),
		errors.Is(err, types.ErrActorRequired),
		errors.Is(err, ErrTokenRequired),
		errors.Is(err, ErrDateRequired),
		errors.Is(err, ErrInvalidDateRange),
		errors.Is(err, ErrStatusNotMarkable):
		category, code, textCode = goerrors.CategoryValidation, goerrors.CodeBadRequest, TextCodeValidation
		message = "go-attendance: invalid request"
	}

	wrapped := goerrors.Wrap(err, category, message).WithCode(code)
	if textCode != "" {
		wrapped = wrapped.WithTextCode(textCode)
	}
	return wrapped.WithMetadata(map[string]any{
		"retryable": Retryable(err),
	})
}

// Retryable reports whether the caller may recover by requesting a new token.
// Closed days and lost races are never retryable: a blind retry could record a
// duplicate check-out attempt.
func Retryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, types.ErrTokenExpired), errors.Is(err, types.ErrInvalidToken):
		return true
	default:
		return false
	}
}
