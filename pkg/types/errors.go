package types

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable category of a surfaced error.
type ErrorKind string

// Error categories surfaced to callers.
const (
	KindUnsupportedVenue       ErrorKind = "UNSUPPORTED_VENUE"
	KindUnsupportedOperation   ErrorKind = "UNSUPPORTED_OPERATION"
	KindVenueUnavailable       ErrorKind = "VENUE_UNAVAILABLE"
	KindAuthenticationRequired ErrorKind = "AUTHENTICATION_REQUIRED"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindInvalidArgument        ErrorKind = "INVALID_ARGUMENT"
	KindInternal               ErrorKind = "INTERNAL"
)

// Sentinels for errors.Is matching against a category.
var (
	ErrUnsupportedVenue       = &Error{Kind: KindUnsupportedVenue}
	ErrUnsupportedOperation   = &Error{Kind: KindUnsupportedOperation}
	ErrVenueUnavailable       = &Error{Kind: KindVenueUnavailable}
	ErrAuthenticationRequired = &Error{Kind: KindAuthenticationRequired}
	ErrNotFound               = &Error{Kind: KindNotFound}
	ErrInvalidArgument        = &Error{Kind: KindInvalidArgument}
)

// Error is a categorized failure carrying the venue and operation it happened in.
type Error struct {
	Kind    ErrorKind
	Venue   string
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = string(e.Kind)
	}

	switch {
	case e.Venue != "" && e.Op != "":
		return fmt.Sprintf("%s %s: %s (%s)", e.Venue, e.Op, msg, e.Kind)
	case e.Venue != "":
		return fmt.Sprintf("%s: %s (%s)", e.Venue, msg, e.Kind)
	default:
		return fmt.Sprintf("%s (%s)", msg, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of venue, operation or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewError builds a categorized error.
func NewError(kind ErrorKind, venue, op, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Venue:   venue,
		Op:      op,
		Message: message,
		Err:     cause,
	}
}

// InvalidArgument is shorthand for a request validation failure.
func InvalidArgument(venue, op, format string, args ...any) *Error {
	return NewError(KindInvalidArgument, venue, op, fmt.Sprintf(format, args...), nil)
}

// KindOf returns the category of err, or KindInternal when err carries none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
