// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// SeatingSyncedEvent is published after a bulk seating mutation has
// been applied.  Downstream consumers (notification dispatch,
// analytics) get enough context to act without querying the primary
// database.  Partial failures are included so a notifier can tell a
// host that some changes did not land.
type SeatingSyncedEvent struct {
	EventID        uint64 `json:"event_id"`
	OwnerID        uint64 `json:"owner_id"`
	Operation      string `json:"operation"` // "auto_assign" or "bulk_save"
	AssignedCount  int    `json:"assigned_count,omitempty"`
	TotalProcessed int    `json:"total_processed"`
	FailedChunks   int    `json:"failed_chunks"`
	CompletedAt    string `json:"completed_at"`
}
