package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"

	"github.com/avelara/seatsync/internal/seating"
)

func TestCommitBatch_RejectsOversizedBatch(t *testing.T) {
	s := NewBatchStore(nil, nil, nil, 3)

	ops := make([]seating.WriteOp, 4)
	for i := range ops {
		ops[i] = seating.SetField(seating.EntityGuest, uint64(i+1), "table_id", uint64(1))
	}

	err := s.CommitBatch(context.Background(), ops)
	require.Error(t, err)
	require.Equal(t, seating.KindPermanent, seating.KindOf(err))
	require.Contains(t, err.Error(), "ceiling")
}

func TestCommitBatch_RejectsUnknownEntityAndField(t *testing.T) {
	s := NewBatchStore(nil, nil, nil, 0)
	ctx := context.Background()

	err := s.CommitBatch(ctx, []seating.WriteOp{seating.SetField("venues", 1, "table_id", 2)})
	require.Error(t, err)
	require.Equal(t, seating.KindPermanent, seating.KindOf(err))

	err = s.CommitBatch(ctx, []seating.WriteOp{seating.SetField(seating.EntityGuest, 1, "owner_id", 2)})
	require.Error(t, err, "owner_id is not a writable column")

	err = s.CommitBatch(ctx, []seating.WriteOp{seating.SetField(seating.EntityGuest, 0, "table_id", 2)})
	require.Error(t, err, "a missing record id is rejected")
}

func TestCommitBatch_EmptyListIsNoop(t *testing.T) {
	s := NewBatchStore(nil, nil, nil, 0)
	require.NoError(t, s.CommitBatch(context.Background(), nil))
}

func TestClassifyStoreErr(t *testing.T) {
	deadlock := classifyStoreErr(&mysql.MySQLError{Number: 1213, Message: "deadlock found"}, "applying")
	require.Equal(t, seating.KindTransient, seating.KindOf(deadlock))

	lockWait := classifyStoreErr(&mysql.MySQLError{Number: 1205, Message: "lock wait timeout"}, "applying")
	require.Equal(t, seating.KindTransient, seating.KindOf(lockWait))

	dupKey := classifyStoreErr(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"}, "applying")
	require.Equal(t, seating.KindPermanent, seating.KindOf(dupKey))

	timeout := classifyStoreErr(context.DeadlineExceeded, "listing guests")
	require.Equal(t, seating.KindTransient, seating.KindOf(timeout))

	plain := classifyStoreErr(errors.New("driver: bad connection"), "listing guests")
	require.Equal(t, seating.KindPermanent, seating.KindOf(plain))
}
