package model

import "time"

// Table describes a seating unit within an event.  Table names are
// unique per event by convention only; the storage layer does not
// enforce uniqueness.  Capacity is advisory: the allocator may plan
// more guests than a table declares and flags the overflow instead
// of rejecting it.
//
// Fields:
//  ID        – primary key identifier.
//  EventID   – event to which this table belongs.
//  OwnerID   – account ID of the owning user.
//  Name      – display name, e.g. "Family" or "Table 3".
//  Capacity  – number of seats (>= 1).
//  Color     – optional label/colour metadata for the UI.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Table struct {
	ID        uint64    `json:"id"`              // tables.id
	EventID   uint64    `json:"event_id"`        // tables.event_id
	OwnerID   uint64    `json:"owner_id"`        // tables.owner_id
	Name      string    `json:"name"`            // tables.name
	Capacity  int       `json:"capacity"`        // tables.capacity
	Color     *string   `json:"color,omitempty"` // tables.color (nullable)
	CreatedAt time.Time `json:"created_at"`      // tables.created_at
	UpdatedAt time.Time `json:"updated_at"`      // tables.updated_at
}
