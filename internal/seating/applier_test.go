package seating

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avelara/seatsync/internal/model"
)

// fakeStore is an in-memory Store.  CommitBatch applies field
// overwrites to the guest slice so tests can observe final state, and
// failBatch lets a test inject errors per commit call.
type fakeStore struct {
	mu      sync.Mutex
	guests  []model.Guest
	tables  []model.Table
	commits [][]WriteOp
	calls   int
	// failBatch, when set, is consulted per CommitBatch call with the
	// 1-based call ordinal.  A non-nil return fails the call without
	// applying anything.
	failBatch func(call int, ops []WriteOp) error
}

func (f *fakeStore) ListGuests(_ context.Context, eventID uint64) ([]model.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Guest, 0, len(f.guests))
	for _, g := range f.guests {
		if g.EventID == eventID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeStore) ListTables(_ context.Context, eventID uint64) ([]model.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Table, 0, len(f.tables))
	for _, t := range f.tables {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) CommitBatch(_ context.Context, ops []WriteOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failBatch != nil {
		if err := f.failBatch(f.calls, ops); err != nil {
			return err
		}
	}
	for _, op := range ops {
		if op.Entity != EntityGuest || op.Field != "table_id" {
			continue
		}
		for i := range f.guests {
			if f.guests[i].ID == op.ID {
				if op.Value == nil {
					f.guests[i].TableID = nil
				} else if v, ok := op.Value.(uint64); ok {
					id := v
					f.guests[i].TableID = &id
				}
			}
		}
	}
	f.commits = append(f.commits, ops)
	return nil
}

func testApplier(store Store, cfg ApplierConfig) *Applier {
	return NewApplier(store, cfg, zerolog.Nop())
}

func guestChanges(n int, tableID uint64) []GuestChange {
	out := make([]GuestChange, n)
	for i := range out {
		id := tableID
		out[i] = GuestChange{GuestID: uint64(i + 1), TableID: &id}
	}
	return out
}

// TestApplier_Chunking: 1000 changes with chunk size 400 must commit
// as exactly 3 batches, none larger than 400.
func TestApplier_Chunking(t *testing.T) {
	store := &fakeStore{}
	a := testApplier(store, ApplierConfig{ChunkSize: 400, MaxConcurrency: 1})

	res := a.Apply(context.Background(), guestChanges(1000, 7), nil)

	require.True(t, res.Success)
	require.Equal(t, 1000, res.TotalProcessed)
	require.Empty(t, res.Errors)
	require.Len(t, store.commits, 3)
	for _, c := range store.commits {
		require.LessOrEqual(t, len(c), 400)
	}
}

func TestApplier_EmptyChangeSet(t *testing.T) {
	store := &fakeStore{}
	a := testApplier(store, ApplierConfig{})

	res := a.Apply(context.Background(), nil, nil)
	require.True(t, res.Success)
	require.Zero(t, res.TotalProcessed)
	require.Zero(t, store.calls, "nothing to commit")
}

// TestApplier_PartialFailure: a permanent failure of the middle chunk
// must not stop the others, and accounting must reflect only the
// committed chunks.
func TestApplier_PartialFailure(t *testing.T) {
	store := &fakeStore{}
	store.failBatch = func(call int, _ []WriteOp) error {
		if call == 2 {
			return errf(KindPermanent, "row rejected")
		}
		return nil
	}
	a := testApplier(store, ApplierConfig{ChunkSize: 400, MaxConcurrency: 1})

	res := a.Apply(context.Background(), guestChanges(1000, 7), nil)

	require.False(t, res.Success)
	require.Equal(t, 800, res.TotalProcessed, "400 from chunk 0 plus 200 from chunk 2")
	require.Len(t, res.Errors, 1, "every failed chunk contributes exactly one error")
	require.Equal(t, 1, res.Errors[0].ChunkIndex)
	require.Contains(t, res.Errors[0].Message, "row rejected")
}

// TestApplier_TransientRetry: a transient failure is retried with
// backoff and succeeds on a later attempt without surfacing an error.
func TestApplier_TransientRetry(t *testing.T) {
	store := &fakeStore{}
	store.failBatch = func(call int, _ []WriteOp) error {
		if call <= 2 {
			return errf(KindTransient, "lock wait timeout")
		}
		return nil
	}
	a := testApplier(store, ApplierConfig{ChunkSize: 100, MaxConcurrency: 1, MaxAttempts: 3, BaseDelay: time.Millisecond})

	res := a.Apply(context.Background(), guestChanges(50, 3), nil)

	require.True(t, res.Success, "transient failures below the attempt ceiling are invisible to callers")
	require.Equal(t, 50, res.TotalProcessed)
	require.Equal(t, 3, store.calls, "two transient failures then one success")
}

func TestApplier_TransientExhaustion(t *testing.T) {
	store := &fakeStore{}
	store.failBatch = func(int, []WriteOp) error {
		return errf(KindTransient, "throttled")
	}
	a := testApplier(store, ApplierConfig{ChunkSize: 100, MaxConcurrency: 1, MaxAttempts: 3, BaseDelay: time.Millisecond})

	res := a.Apply(context.Background(), guestChanges(10, 3), nil)

	require.False(t, res.Success)
	require.Equal(t, 3, store.calls, "attempt ceiling bounds the retries")
	require.Len(t, res.Errors, 1)
}

func TestApplier_PermanentFailureNotRetried(t *testing.T) {
	store := &fakeStore{}
	store.failBatch = func(int, []WriteOp) error {
		return errf(KindPermanent, "unknown column")
	}
	a := testApplier(store, ApplierConfig{ChunkSize: 100, MaxConcurrency: 1, MaxAttempts: 3, BaseDelay: time.Millisecond})

	res := a.Apply(context.Background(), guestChanges(10, 3), nil)

	require.False(t, res.Success)
	require.Equal(t, 1, store.calls, "permanent failures are not retried")
}

// TestApplier_Cancellation: chunks not yet started when the context
// is cancelled are reported as cancelled, not silently dropped.
func TestApplier_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &fakeStore{}
	store.failBatch = func(call int, _ []WriteOp) error {
		if call == 1 {
			cancel() // give up while the first chunk is in flight
			time.Sleep(20 * time.Millisecond)
		}
		return nil
	}
	a := testApplier(store, ApplierConfig{ChunkSize: 10, MaxConcurrency: 1})

	res := a.Apply(ctx, guestChanges(30, 2), nil)

	require.False(t, res.Success)
	require.Equal(t, 10, res.TotalProcessed, "the in-flight chunk runs to completion")
	require.Len(t, res.Errors, 2, "both unstarted chunks are reported")
	for _, e := range res.Errors {
		require.Contains(t, e.Message, "cancelled")
	}
}

// TestApplier_AlreadyCancelled: a context cancelled before Apply is
// called must not start any chunk, even with free semaphore capacity;
// every chunk is reported cancelled and nothing reaches the store.
func TestApplier_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := &fakeStore{}
	a := testApplier(store, ApplierConfig{ChunkSize: 5, MaxConcurrency: 4})

	res := a.Apply(ctx, guestChanges(20, 2), nil)

	require.False(t, res.Success)
	require.Zero(t, res.TotalProcessed, "no chunk may be committed after cancellation")
	require.Zero(t, store.calls, "no commit call may be issued")
	require.Len(t, res.Errors, 4, "all four chunks are reported")
	for _, e := range res.Errors {
		require.Contains(t, e.Message, "cancelled")
	}
}

// TestApplier_Idempotence: applying the identical change set twice
// leaves the store in the same final state, because every change is a
// field overwrite.
func TestApplier_Idempotence(t *testing.T) {
	store := &fakeStore{guests: []model.Guest{
		{ID: 1, EventID: 1}, {ID: 2, EventID: 1}, {ID: 3, EventID: 1},
	}}
	a := testApplier(store, ApplierConfig{ChunkSize: 2, MaxConcurrency: 1})
	changes := guestChanges(3, 9)

	res := a.Apply(context.Background(), changes, nil)
	require.True(t, res.Success)
	once := make([]*uint64, len(store.guests))
	for i, g := range store.guests {
		once[i] = g.TableID
	}

	res = a.Apply(context.Background(), changes, nil)
	require.True(t, res.Success)
	for i, g := range store.guests {
		require.Equal(t, *once[i], *g.TableID)
	}
}

// TestApplier_OrderAndMixedChanges: guest changes precede table
// changes in the op stream and a multi-field table change expands to
// one op per field.
func TestApplier_OrderAndMixedChanges(t *testing.T) {
	store := &fakeStore{}
	a := testApplier(store, ApplierConfig{ChunkSize: 100, MaxConcurrency: 1})

	tableID := uint64(4)
	res := a.Apply(context.Background(),
		[]GuestChange{{GuestID: 1, TableID: &tableID}, {GuestID: 2}},
		[]TableChange{{TableID: 4, Updates: map[string]any{"capacity": 12, "name": "Head"}}},
	)

	require.True(t, res.Success)
	require.Equal(t, 4, res.TotalProcessed, "two guest ops plus two table field ops")
	require.Len(t, store.commits, 1)
	ops := store.commits[0]
	require.Equal(t, EntityGuest, ops[0].Entity)
	require.Equal(t, EntityGuest, ops[1].Entity)
	require.Nil(t, ops[1].Value, "nil table id clears the assignment")
	require.Equal(t, EntityTable, ops[2].Entity)
	require.Equal(t, "name", ops[2].Field, "table field expansion order is fixed")
	require.Equal(t, "capacity", ops[3].Field)
}

func TestApplier_ConcurrentChunks(t *testing.T) {
	store := &fakeStore{}
	a := testApplier(store, ApplierConfig{ChunkSize: 50, MaxConcurrency: 4})

	res := a.Apply(context.Background(), guestChanges(500, 1), nil)

	require.True(t, res.Success)
	require.Equal(t, 500, res.TotalProcessed)
	require.Equal(t, 10, store.calls)
}
