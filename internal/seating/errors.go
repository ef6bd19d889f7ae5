// Package seating implements the seating synchronization engine: a
// deterministic capacity-aware guest distribution, a chunked mutation
// applier that commits bulk changes against the store in bounded
// transactional batches, and tolerant name matching over a guest
// roster.  All entry points return typed errors from the taxonomy in
// this file; nothing in this package panics across its boundary.
package seating

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.  Kinds are stable codes intended
// for callers (HTTP handlers) to map onto response semantics.
type Kind string

const (
	KindValidation Kind = "validation" // malformed caller input, rejected before persistence
	KindNotFound   Kind = "not_found"  // referenced event/guest/table absent
	KindTransient  Kind = "transient"  // rate limiting / timeouts, retried internally
	KindPermanent  Kind = "permanent"  // data rejected by the store, not retried
	KindCancelled  Kind = "cancelled"  // caller cancelled before the work was attempted
)

// Error is the structured error type returned across the engine
// boundary.  Code is stable and machine-readable; Message is for
// humans.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// errf builds a typed engine error with a formatted message.
func errf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrap attaches a kind and message to an underlying error.
func wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf extracts the engine kind from err.  Unknown errors are
// treated as permanent: retrying a failure we cannot classify risks
// hammering the store for nothing.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindPermanent
}

// IsTransient reports whether err should be retried by the applier.
func IsTransient(err error) bool { return KindOf(err) == KindTransient }

// Sentinel conditions surfaced by the orchestrator.
var (
	// ErrNoTables is returned by AutoAssign when the event has no tables.
	ErrNoTables = &Error{Kind: KindValidation, Message: "event has no tables to assign guests to"}
	// ErrNoUnassignedGuests is returned by AutoAssign when every guest already has a table.
	ErrNoUnassignedGuests = &Error{Kind: KindValidation, Message: "event has no unassigned guests"}
	// ErrGuestNotFound is returned by FindGuest when no roster entry matches the query.
	ErrGuestNotFound = &Error{Kind: KindNotFound, Message: "no guest matches the query"}
)
