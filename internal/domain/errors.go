package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies adapter failures. Listing operations recover from
// transport and shape failures by degrading to an empty page; single-entity
// operations surface them to the caller.
type FailureKind string

const (
	// TransportFailure is a non-success HTTP status or a network-level error.
	TransportFailure FailureKind = "transport_failure"

	// MalformedResponse means the JSON or HTML structure did not match the
	// expected shape.
	MalformedResponse FailureKind = "malformed_response"

	// DataAbsence means an expected entity was not found after a successful
	// fetch (chapter by index, author by id).
	DataAbsence FailureKind = "data_absence"

	// NoPlayableSource means a chapter resolved but no audio candidate could
	// be built.
	NoPlayableSource FailureKind = "no_playable_source"
)

// Error is the typed failure returned by single-entity detail and playback
// resolution. Msg is human-readable and intended for the host UI.
type Error struct {
	Kind FailureKind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Errf builds a typed Error with a formatted message.
func Errf(kind FailureKind, op string, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// WrapErr builds a typed Error wrapping a cause.
func WrapErr(kind FailureKind, op, msg string, err error) *Error {
	return &Error{Kind: kind, Op: op, Msg: msg, Err: err}
}

// IsKind reports whether err (or anything it wraps) is a typed Error of the
// given kind.
func IsKind(err error, kind FailureKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
