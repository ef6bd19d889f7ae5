package seating

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelara/seatsync/internal/model"
)

// Entity names the record collection a write operation targets.
type Entity string

const (
	EntityGuest Entity = "guests"
	EntityTable Entity = "tables"
)

// WriteOp is one write against the store: either a field overwrite or
// a record deletion.  Ops are applied in order within a chunk.
type WriteOp struct {
	Entity Entity
	ID     uint64
	Field  string // empty for deletions
	Value  any    // nil clears the field
	Delete bool
}

// SetField builds a field-overwrite operation.
func SetField(entity Entity, id uint64, field string, value any) WriteOp {
	return WriteOp{Entity: entity, ID: id, Field: field, Value: value}
}

// DeleteRecord builds a record-deletion operation.
func DeleteRecord(entity Entity, id uint64) WriteOp {
	return WriteOp{Entity: entity, ID: id, Delete: true}
}

// Store is the persistence collaborator consumed by the engine.
// CommitBatch must be atomic over the whole operation list it is
// given: either every op is durably applied or none are.
type Store interface {
	ListGuests(ctx context.Context, eventID uint64) ([]model.Guest, error)
	ListTables(ctx context.Context, eventID uint64) ([]model.Table, error)
	CommitBatch(ctx context.Context, ops []WriteOp) error
}

// GuestChange moves a guest onto a table, or off every table when
// TableID is nil.
type GuestChange struct {
	GuestID uint64  `json:"guest_id"`
	TableID *uint64 `json:"table_id"`
}

// TableChange updates one or more fields of a table.  Recognized
// fields are name, capacity and color.
type TableChange struct {
	TableID uint64         `json:"table_id"`
	Updates map[string]any `json:"updates"`
}

// BatchError records one failed chunk of a bulk apply.  ChunkIndex is
// an opaque ordinal correlating the failure to a slice of the input;
// when chunks run concurrently the order of errors reflects
// completion order, not input order.
type BatchError struct {
	ChunkIndex int    `json:"chunk_index"`
	Message    string `json:"message"`
}

// BatchResult aggregates the per-chunk outcomes of one Apply call.
// TotalProcessed counts operations in successfully committed chunks
// only.  Every failed chunk contributes exactly one entry to Errors.
type BatchResult struct {
	Success        bool         `json:"success"`
	TotalProcessed int          `json:"total_processed"`
	Errors         []BatchError `json:"errors,omitempty"`
}

// ApplierConfig tunes the chunked mutation applier.
type ApplierConfig struct {
	// ChunkSize caps the number of operations per atomic commit.
	// It must stay below the store's per-commit operation ceiling.
	ChunkSize int
	// MaxConcurrency bounds how many chunk commits run in flight at
	// once.  Defaults to NumCPU capped at 4 so a large bulk edit does
	// not saturate the store's concurrent-write limits.
	MaxConcurrency int
	// MaxAttempts is the per-chunk attempt ceiling for transient
	// failures.  Non-transient failures are never retried.
	MaxAttempts int
	// BaseDelay is the first retry backoff; it doubles per attempt.
	BaseDelay time.Duration
}

const defaultChunkSize = 450

func (c ApplierConfig) withDefaults() ApplierConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.MaxConcurrency <= 0 {
		c.MaxConcurrency = runtime.NumCPU()
		if c.MaxConcurrency > 4 {
			c.MaxConcurrency = 4
		}
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 200 * time.Millisecond
	}
	return c
}

// Applier partitions an arbitrary change set into bounded chunks and
// commits each chunk independently.  A chunk either fully succeeds or
// fully fails; failure of one chunk does not stop the others.  This
// is deliberate best-effort semantics: a large bulk edit should not
// be wholly lost because one chunk hit a transient fault.
type Applier struct {
	store Store
	cfg   ApplierConfig
	log   zerolog.Logger
}

// NewApplier constructs an Applier.  Zero config fields fall back to
// defaults.
func NewApplier(store Store, cfg ApplierConfig, log zerolog.Logger) *Applier {
	if store == nil {
		panic("nil store passed to NewApplier")
	}
	return &Applier{store: store, cfg: cfg.withDefaults(), log: log}
}

// opsFromChanges flattens guest changes followed by table changes
// into one ordered operation list.  Input order is preserved so that
// when two changes touch the same record, the later one wins.
func opsFromChanges(guestChanges []GuestChange, tableChanges []TableChange) []WriteOp {
	ops := make([]WriteOp, 0, len(guestChanges)+len(tableChanges))
	for _, gc := range guestChanges {
		var v any
		if gc.TableID != nil {
			v = *gc.TableID
		}
		ops = append(ops, SetField(EntityGuest, gc.GuestID, "table_id", v))
	}
	for _, tc := range tableChanges {
		for _, field := range tableFieldOrder {
			if v, ok := tc.Updates[field]; ok {
				ops = append(ops, SetField(EntityTable, tc.TableID, field, v))
			}
		}
	}
	return ops
}

// tableFieldOrder fixes the expansion order of a table change's
// update map so identical inputs always produce identical op lists.
var tableFieldOrder = []string{"name", "capacity", "color"}

// chunkOps splits ops into consecutive slices of at most size.
func chunkOps(ops []WriteOp, size int) [][]WriteOp {
	var chunks [][]WriteOp
	for start := 0; start < len(ops); start += size {
		end := start + size
		if end > len(ops) {
			end = len(ops)
		}
		chunks = append(chunks, ops[start:end])
	}
	return chunks
}

// Apply commits the combined change set in chunks of at most
// cfg.ChunkSize operations, up to cfg.MaxConcurrency chunks in
// flight.  The result reports how many operations landed in
// successfully committed chunks and itemizes every failed chunk.
//
// Cancellation: a chunk whose commit is already in flight is allowed
// to finish (aborting a submitted commit would leave an unknown
// partial-apply state); chunks not yet started are reported as
// cancelled.
func (a *Applier) Apply(ctx context.Context, guestChanges []GuestChange, tableChanges []TableChange) BatchResult {
	ops := opsFromChanges(guestChanges, tableChanges)
	if len(ops) == 0 {
		return BatchResult{Success: true}
	}
	chunks := chunkOps(ops, a.cfg.ChunkSize)

	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		processed int
		failures  []BatchError
	)
	sem := make(chan struct{}, a.cfg.MaxConcurrency)

	for idx, chunk := range chunks {
		// Abandon chunks that have not started once the caller gives up.
		// The ctx.Err check comes first: a select with free semaphore
		// capacity picks between ready cases at random and could start a
		// chunk after cancellation.
		if ctx.Err() != nil {
			mu.Lock()
			failures = append(failures, BatchError{ChunkIndex: idx, Message: "cancelled before commit was attempted"})
			mu.Unlock()
			continue
		}
		select {
		case <-ctx.Done():
			mu.Lock()
			failures = append(failures, BatchError{ChunkIndex: idx, Message: "cancelled before commit was attempted"})
			mu.Unlock()
			continue
		case sem <- struct{}{}:
		}
		wg.Add(1)
		go func(idx int, chunk []WriteOp) {
			defer wg.Done()
			defer func() { <-sem }()

			err := a.commitChunk(ctx, idx, chunk)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, BatchError{ChunkIndex: idx, Message: err.Error()})
				return
			}
			processed += len(chunk)
		}(idx, chunk)
	}
	wg.Wait()

	return BatchResult{
		Success:        len(failures) == 0,
		TotalProcessed: processed,
		Errors:         failures,
	}
}

// commitChunk submits one chunk, retrying transient failures with
// exponential backoff up to the attempt ceiling.  The commit itself
// runs detached from the caller's cancellation: once a batch is sent
// it must run to completion to keep chunk atomicity meaningful.
func (a *Applier) commitChunk(ctx context.Context, idx int, chunk []WriteOp) error {
	delay := a.cfg.BaseDelay
	var err error
	for attempt := 1; attempt <= a.cfg.MaxAttempts; attempt++ {
		err = a.store.CommitBatch(context.WithoutCancel(ctx), chunk)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			a.log.Error().Err(err).Int("chunk", idx).Int("ops", len(chunk)).Msg("chunk commit failed")
			return err
		}
		if attempt == a.cfg.MaxAttempts {
			break
		}
		a.log.Warn().Err(err).Int("chunk", idx).Int("attempt", attempt).Dur("backoff", delay).Msg("transient chunk failure, retrying")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return wrap(KindCancelled, ctx.Err(), "cancelled while waiting to retry")
		}
		delay *= 2
	}
	a.log.Error().Err(err).Int("chunk", idx).Int("attempts", a.cfg.MaxAttempts).Msg("chunk commit failed after retries")
	return err
}
