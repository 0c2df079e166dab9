// Package errorspkg provides common app errors.
package errorspkg

import (
	"context"
	"errors"
)

var (
	// ErrInternal indicates internal server error.
	ErrInternal = errors.New("internal")
	// ErrUnavailable indicates that a backing store timed out or dropped the connection.
	// Callers may retry operations that have no side effects.
	ErrUnavailable = errors.New("store unavailable")
)

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, context.DeadlineExceeded)
}
