package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification.
var (
	ErrRangeTooSmall   = errors.New("category range too small for row count")
	ErrExhausted       = errors.New("no more numbers to draw")
	ErrNoCandidates    = errors.New("tie break needs at least one candidate")
	ErrSessionNotFound = errors.New("session not found")
	ErrActiveSession   = errors.New("an active session already exists")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "configuration"
	KindExhausted     ErrorKind = "exhausted"
	KindInvalidInput  ErrorKind = "invalid_input"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
)

// Error wraps an underlying error with operation context and a kind.
type Error struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Errorf builds an Error of the given kind with a formatted cause.
func Errorf(op string, kind ErrorKind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
