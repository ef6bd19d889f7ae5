package model

import (
	"strings"
	"time"
)

// Guest represents an invitee of an event, optionally assigned to one
// table.  Older imports stored a single free-form name; newer records
// carry separate first and last names.  Both representations are kept
// in the row and collapsed into one canonical display name by
// DisplayName, which is the only derivation the rest of the codebase
// uses.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event to which this guest belongs.
//  OwnerID    – account ID of the owning user.
//  FirstName  – given name (may be empty on legacy rows).
//  LastName   – family name (may be empty on legacy rows).
//  LegacyName – single name column from older imports.
//  Phone      – optional phone number.
//  Email      – optional email address.
//  Notes      – optional free-text notes.
//  TableID    – assigned table, nil when unassigned.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Guest struct {
	ID         uint64    `json:"id"`              // guests.id
	EventID    uint64    `json:"event_id"`        // guests.event_id
	OwnerID    uint64    `json:"owner_id"`        // guests.owner_id
	FirstName  string    `json:"first_name"`      // guests.first_name
	LastName   string    `json:"last_name"`       // guests.last_name
	LegacyName string    `json:"-"`               // guests.legacy_name
	Phone      *string   `json:"phone,omitempty"` // guests.phone (nullable)
	Email      *string   `json:"email,omitempty"` // guests.email (nullable)
	Notes      *string   `json:"notes,omitempty"` // guests.notes (nullable)
	TableID    *uint64   `json:"table_id"`        // guests.table_id (nullable)
	CreatedAt  time.Time `json:"created_at"`      // guests.created_at
	UpdatedAt  time.Time `json:"updated_at"`      // guests.updated_at
}

// DisplayName collapses the first/last and legacy name columns into
// the one name shown everywhere.  First+last wins when either part is
// present; the legacy column is the fallback for old rows.
func (g Guest) DisplayName() string {
	first := strings.TrimSpace(g.FirstName)
	last := strings.TrimSpace(g.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + last
	case first != "":
		return first
	case last != "":
		return last
	default:
		return strings.TrimSpace(g.LegacyName)
	}
}

// Assigned reports whether the guest currently references a table.
func (g Guest) Assigned() bool { return g.TableID != nil }
