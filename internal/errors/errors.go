// internal/errors/errors.go
package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Domain sentinels. Repositories return these; handlers translate them
// via HTTPStatus so the mapping lives in one place.
var (
	// ErrNotFound: the match request (or referenced entity) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicatePending: a pending match request already exists between
	// the pair. A benign conflict, not a system fault.
	ErrDuplicatePending = errors.New("pending match request already exists")

	// ErrAlreadyProcessed: a concurrent caller won the transition race.
	// The repository returns the actual terminal record alongside, so the
	// loser can still render the decided outcome.
	ErrAlreadyProcessed = errors.New("match request already processed")
)

// ValidationError marks malformed input or an acting user that is not
// authorized for the request. Never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ForbiddenError marks an identity mismatch (acting user is not the
// designated receiver).
type ForbiddenError struct {
	Msg string
}

func (e *ForbiddenError) Error() string { return e.Msg }

// Validation creates a ValidationError for bad input.
func Validation(msg string) error { return &ValidationError{Msg: msg} }

// Forbidden creates a ForbiddenError for identity mismatches.
func Forbidden(msg string) error { return &ForbiddenError{Msg: msg} }

// HTTPStatus maps domain and infra errors onto HTTP status codes.
// Keeps handlers clean by centralizing the mapping.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var fe *ForbiddenError

	switch {
	case err == nil:
		return http.StatusOK

	case errors.As(err, &ve):
		return http.StatusBadRequest

	case errors.As(err, &fe):
		return http.StatusForbidden

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrDuplicatePending):
		return http.StatusConflict

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// ClientMessage returns a message safe to expose to API clients.
// Infra faults collapse to a generic message; domain errors keep theirs.
func ClientMessage(err error) string {
	if HTTPStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound.Error()
	}
	return err.Error()
}
