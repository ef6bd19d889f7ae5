// Package repository contains the data access layer: per-entity CRUD
// repositories and the transactional batch store consumed by the
// seating engine.  Sentinel errors defined here let handlers
// distinguish failure scenarios without inspecting driver errors.
package repository

import "errors"

// ErrEventNotFound is returned when an event lookup yields no rows.
var ErrEventNotFound = errors.New("event not found")

// ErrGuestNotFound is returned when a guest lookup yields no rows.
var ErrGuestNotFound = errors.New("guest not found")

// ErrTableNotFound is returned when a table lookup yields no rows.
// Ownership mismatches surface as not-found too, so a caller cannot
// probe for other accounts' resources.
var ErrTableNotFound = errors.New("table not found")
