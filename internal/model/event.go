package model

import "time"

// Event represents a seating-management project owned by a user.
// An event aggregates zero or more guests and tables.  Deleting an
// event cascades to both; resetting an event clears table assignments
// and deletes its tables while preserving guests.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – account ID of the event owner.
//  Name      – display name of the event.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Event struct {
	ID        uint64    `json:"id"`         // events.id
	OwnerID   uint64    `json:"owner_id"`   // events.owner_id
	Name      string    `json:"name"`       // events.name
	CreatedAt time.Time `json:"created_at"` // events.created_at
	UpdatedAt time.Time `json:"updated_at"` // events.updated_at
}
