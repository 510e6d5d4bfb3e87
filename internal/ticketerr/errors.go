// Package ticketerr defines the typed error taxonomy surfaced by the
// repository layer. Every operation either succeeds or fails with one of
// these kinds; callers distinguish them with Is/As rather than string
// matching.
package ticketerr

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure. The zero value is not a valid kind.
type Kind int

const (
	_ Kind = iota
	// NotInitialized means the project root lacks the on-disk layout.
	NotInitialized
	// AlreadyInitialized means Initialize was called on an existing layout without force.
	AlreadyInitialized
	// NotFound means a ref resolved to no ticket.
	NotFound
	// AmbiguousPrefix means a ref matched more than one ticket.
	AmbiguousPrefix
	// DuplicateSlug means a created ticket's derived slug already exists.
	DuplicateSlug
	// InvalidTransition means a status change violates the transition table.
	InvalidTransition
	// Contention means lock acquisition exhausted its retry budget.
	Contention
	// MalformedInput means on-disk text could not be parsed at all.
	MalformedInput
	// SchemaViolation means parsed text is missing required fields or has
	// out-of-enumeration values.
	SchemaViolation
	// Io means an underlying filesystem operation failed for a reason other
	// than the above.
	Io
)

func (k Kind) String() string {
	switch k {
	case NotInitialized:
		return "not_initialized"
	case AlreadyInitialized:
		return "already_initialized"
	case NotFound:
		return "not_found"
	case AmbiguousPrefix:
		return "ambiguous_prefix"
	case DuplicateSlug:
		return "duplicate_slug"
	case InvalidTransition:
		return "invalid_transition"
	case Contention:
		return "contention"
	case MalformedInput:
		return "malformed_input"
	case SchemaViolation:
		return "schema_violation"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by repository and component
// operations. It carries the failing Kind, the operation label, and the
// subject (a ticket id, slug, or path) where applicable.
type Error struct {
	Kind    Kind
	Op      string
	Subject string
	Err     error
}

func (e *Error) Error() string {
	if e.Subject == "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Subject, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Subject, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error with no wrapped cause.
func New(op string, kind Kind, subject string) *Error {
	return &Error{Op: op, Kind: kind, Subject: subject}
}

// Wrap builds an *Error around an existing cause.
func Wrap(op string, kind Kind, subject string, err error) *Error {
	return &Error{Op: op, Kind: kind, Subject: subject, Err: err}
}

// Is reports whether err's Kind equals kind. It matches any wrapped *Error
// in the chain, not just the outermost one, including an *Error wrapped as
// the cause of another *Error.
func Is(err error, kind Kind) bool {
	for err != nil {
		var te *Error
		if !errors.As(err, &te) {
			return false
		}
		if te.Kind == kind {
			return true
		}
		err = te.Err
	}
	return false
}

// KindOf extracts the Kind of err, returning false if err does not carry one.
func KindOf(err error) (Kind, bool) {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind, true
	}
	return 0, false
}
