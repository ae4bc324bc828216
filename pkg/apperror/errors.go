// Package apperror defines the error values services return and the HTTP status each maps to.
package apperror

import (
	"errors"
	"net/http"
)

// Services wrap these with fmt.Errorf or New; handlers only look at the chain.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrInternal          = errors.New("internal error")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("already exists")
	ErrUpstream          = errors.New("media provider unavailable")
	ErrRateLimitExceeded = errors.New("too many requests")
)

// AppError pins a status and a client-facing message onto an error chain.
// A zero Code falls back to the sentinel mapping.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{ErrNotFound, http.StatusNotFound},
	{ErrUnauthorized, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrBadRequest, http.StatusBadRequest},
	{ErrInvalidInput, http.StatusBadRequest},
	{ErrConflict, http.StatusConflict},
	{ErrUpstream, http.StatusBadGateway},
	{ErrRateLimitExceeded, http.StatusTooManyRequests},
}

// MapErrorToStatus picks the status for err. Anything unrecognised is a 500.
func MapErrorToStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return http.StatusInternalServerError
}
