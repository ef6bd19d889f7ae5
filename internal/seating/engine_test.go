package seating

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/avelara/seatsync/internal/model"
)

func testEngine(store *fakeStore) *Engine {
	applier := NewApplier(store, ApplierConfig{ChunkSize: 400, MaxConcurrency: 1}, zerolog.Nop())
	return NewEngine(store, nil, applier, zerolog.Nop())
}

func TestAutoAssign_NoTables(t *testing.T) {
	store := &fakeStore{guests: []model.Guest{{ID: 1, EventID: 1}}}
	e := testEngine(store)

	_, err := e.AutoAssign(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoTables)
	require.Zero(t, store.calls, "no store write may be issued")
}

func TestAutoAssign_NoUnassignedGuests(t *testing.T) {
	tid := uint64(5)
	store := &fakeStore{
		guests: []model.Guest{{ID: 1, EventID: 1, TableID: &tid}},
		tables: []model.Table{{ID: 5, EventID: 1, Name: "A", Capacity: 8}},
	}
	e := testEngine(store)

	_, err := e.AutoAssign(context.Background(), 1)
	require.ErrorIs(t, err, ErrNoUnassignedGuests)
	require.Zero(t, store.calls)
}

func TestAutoAssign_DistributesAndPersists(t *testing.T) {
	store := &fakeStore{
		tables: []model.Table{
			{ID: 10, EventID: 1, Name: "A", Capacity: 4},
			{ID: 11, EventID: 1, Name: "B", Capacity: 4},
			{ID: 12, EventID: 1, Name: "C", Capacity: 4},
		},
	}
	for i := 1; i <= 10; i++ {
		store.guests = append(store.guests, model.Guest{ID: uint64(i), EventID: 1, FirstName: "G"})
	}
	e := testEngine(store)

	out, err := e.AutoAssign(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 10, out.AssignedCount)
	require.True(t, out.Result.Success)

	counts := map[uint64]int{}
	for _, g := range store.guests {
		require.NotNil(t, g.TableID, "every guest ends up assigned")
		counts[*g.TableID]++
	}
	require.Equal(t, map[uint64]int{10: 4, 11: 3, 12: 3}, counts)
}

func TestAutoAssign_SkipsAlreadyAssigned(t *testing.T) {
	tid := uint64(10)
	store := &fakeStore{
		tables: []model.Table{{ID: 10, EventID: 1, Name: "A", Capacity: 8}},
		guests: []model.Guest{
			{ID: 1, EventID: 1, TableID: &tid},
			{ID: 2, EventID: 1},
			{ID: 3, EventID: 1},
		},
	}
	e := testEngine(store)

	out, err := e.AutoAssign(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 2, out.AssignedCount, "only unassigned guests are moved")
}

func TestBulkSave_Validation(t *testing.T) {
	store := &fakeStore{}
	e := testEngine(store)
	ctx := context.Background()
	zero := uint64(0)

	_, err := e.BulkSave(ctx, []GuestChange{{GuestID: 0}}, nil)
	require.Equal(t, KindValidation, KindOf(err))

	_, err = e.BulkSave(ctx, []GuestChange{{GuestID: 1, TableID: &zero}}, nil)
	require.Equal(t, KindValidation, KindOf(err), "empty table reference is rejected")

	_, err = e.BulkSave(ctx, nil, []TableChange{{TableID: 2, Updates: map[string]any{}}})
	require.Equal(t, KindValidation, KindOf(err), "a table change needs at least one recognized field")

	_, err = e.BulkSave(ctx, nil, []TableChange{{TableID: 2, Updates: map[string]any{"theme": "gold"}}})
	require.Equal(t, KindValidation, KindOf(err), "unrecognized fields are rejected")

	require.Zero(t, store.calls, "validation failures never reach the store")
}

func TestBulkSave_Delegates(t *testing.T) {
	store := &fakeStore{guests: []model.Guest{{ID: 1, EventID: 1}}}
	e := testEngine(store)

	tid := uint64(3)
	res, err := e.BulkSave(context.Background(),
		[]GuestChange{{GuestID: 1, TableID: &tid}},
		[]TableChange{{TableID: 3, Updates: map[string]any{"capacity": 10}}},
	)
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 2, res.TotalProcessed)
	require.Equal(t, tid, *store.guests[0].TableID)
}

func TestFindGuest(t *testing.T) {
	tid := uint64(7)
	store := &fakeStore{
		guests: []model.Guest{
			{ID: 1, EventID: 1, FirstName: "John", LastName: "Smith", TableID: &tid},
			{ID: 2, EventID: 1, FirstName: "Mary", LastName: "Jones"},
		},
		tables: []model.Table{{ID: 7, EventID: 1, Name: "Head", Capacity: 6}},
	}
	e := testEngine(store)

	m, err := e.FindGuest(context.Background(), "smith", 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), m.Guest.ID)
	require.Equal(t, "John Smith", m.DisplayName)
	require.NotNil(t, m.Table)
	require.Equal(t, "Head", m.Table.Name)

	m, err = e.FindGuest(context.Background(), "mary", 1)
	require.NoError(t, err)
	require.Nil(t, m.Table, "unassigned guest has no table reference")

	_, err = e.FindGuest(context.Background(), "nobody", 1)
	require.ErrorIs(t, err, ErrGuestNotFound)
}

func TestFindGuest_DanglingAssignment(t *testing.T) {
	tid := uint64(99)
	store := &fakeStore{
		guests: []model.Guest{{ID: 1, EventID: 1, FirstName: "John", LastName: "Smith", TableID: &tid}},
	}
	e := testEngine(store)

	m, err := e.FindGuest(context.Background(), "john", 1)
	require.NoError(t, err)
	require.Nil(t, m.Table, "a stale table reference is surfaced as unassigned")
}

func TestSuggestNames(t *testing.T) {
	store := &fakeStore{guests: []model.Guest{
		{ID: 1, EventID: 1, FirstName: "John", LastName: "Smith"},
		{ID: 2, EventID: 1, FirstName: "Johanna", LastName: "Doe"},
	}}
	e := testEngine(store)

	got, err := e.SuggestNames(context.Background(), "jo", 1, 10)
	require.NoError(t, err)
	require.Equal(t, []string{"John Smith", "Johanna Doe"}, got)

	got, err = e.SuggestNames(context.Background(), "j", 1, 10)
	require.NoError(t, err)
	require.Empty(t, got, "prefix below the minimum length yields nothing")
}

type failingListStore struct{ fakeStore }

func (f *failingListStore) ListGuests(context.Context, uint64) ([]model.Guest, error) {
	return nil, errf(KindTransient, "connection reset")
}

func TestEngine_StoreErrorKindPropagates(t *testing.T) {
	store := &failingListStore{}
	store.tables = []model.Table{{ID: 1, EventID: 1, Name: "A", Capacity: 4}}
	applier := NewApplier(store, ApplierConfig{}, zerolog.Nop())
	e := NewEngine(store, nil, applier, zerolog.Nop())

	_, err := e.AutoAssign(context.Background(), 1)
	require.Error(t, err)
	require.Equal(t, KindTransient, KindOf(err))

	var typed *Error
	require.True(t, errors.As(err, &typed))
}
