// internal/swap/errors.go
package swap

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the pipeline can surface to a user.
type Kind string

const (
	KindInvalidRequest      Kind = "invalid_request"
	KindChainRead           Kind = "chain_read"
	KindNoRoute             Kind = "no_route"
	KindProvider            Kind = "provider"
	KindSigning             Kind = "signing"
	KindBroadcast           Kind = "broadcast"
	KindTimedOut            Kind = "timed_out"
	KindInvalidConfirmation Kind = "invalid_confirmation"
)

// Error wraps an underlying cause with its taxonomy kind. Every external
// call site maps transport and parse failures into one of the kinds above;
// nothing reaches the chat layer unclassified.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the given kind.
func NewError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the taxonomy kind from err, or empty string if err was
// never classified.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
