package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/avelara/seatsync/internal/model"
	"github.com/avelara/seatsync/internal/seating"
)

// defaultMaxBatchOps caps the operations accepted by one CommitBatch
// call. The engine's chunk size must stay below this ceiling.
const defaultMaxBatchOps = 500

// writable columns per entity. Anything outside these maps is
// rejected before the database is touched.
var guestWritableFields = map[string]bool{
	"table_id":   true,
	"first_name": true,
	"last_name":  true,
	"phone":      true,
	"email":      true,
	"notes":      true,
}

var tableWritableFields = map[string]bool{
	"name":     true,
	"capacity": true,
	"color":    true,
}

// BatchStore implements seating.Store on top of MySQL.  Reads
// delegate to the per-entity repositories; CommitBatch executes an
// ordered operation list inside a single transaction so a batch is
// applied all-or-nothing.
type BatchStore struct {
	db     *sql.DB
	guests *GuestRepo
	tables *TableRepo
	maxOps int
}

var _ seating.Store = (*BatchStore)(nil)

// NewBatchStore constructs a BatchStore.  maxOps <= 0 selects the
// default per-commit operation ceiling.
func NewBatchStore(db *sql.DB, guests *GuestRepo, tables *TableRepo, maxOps int) *BatchStore {
	if maxOps <= 0 {
		maxOps = defaultMaxBatchOps
	}
	return &BatchStore{db: db, guests: guests, tables: tables, maxOps: maxOps}
}

// ListGuests returns the event's roster in insertion order.
func (s *BatchStore) ListGuests(ctx context.Context, eventID uint64) ([]model.Guest, error) {
	guests, err := s.guests.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, classifyStoreErr(err, "listing guests")
	}
	return guests, nil
}

// ListTables returns the event's tables in insertion order.
func (s *BatchStore) ListTables(ctx context.Context, eventID uint64) ([]model.Table, error) {
	tables, err := s.tables.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, classifyStoreErr(err, "listing tables")
	}
	return tables, nil
}

// CommitBatch applies the operation list atomically: every op or
// none.  Lists longer than the configured ceiling and ops targeting
// unknown entities or columns fail as permanent errors without
// touching the database.
func (s *BatchStore) CommitBatch(ctx context.Context, ops []seating.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}
	if len(ops) > s.maxOps {
		return &seating.Error{
			Kind:    seating.KindPermanent,
			Message: fmt.Sprintf("batch of %d operations exceeds the per-commit ceiling of %d", len(ops), s.maxOps),
		}
	}
	for i, op := range ops {
		if err := validateOp(op); err != nil {
			return &seating.Error{Kind: seating.KindPermanent, Message: fmt.Sprintf("operation %d: %v", i, err)}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classifyStoreErr(err, "beginning batch transaction")
	}
	defer func() { _ = tx.Rollback() }()

	for _, op := range ops {
		if op.Delete {
			_, err = tx.ExecContext(ctx, `DELETE FROM `+string(op.Entity)+` WHERE id = ?`, op.ID)
		} else {
			// Entity and field names are whitelisted above, never caller-supplied SQL.
			q := `UPDATE ` + string(op.Entity) + ` SET ` + op.Field + ` = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
			_, err = tx.ExecContext(ctx, q, op.Value, op.ID)
		}
		if err != nil {
			return classifyStoreErr(err, "applying batch operation")
		}
	}
	if err := tx.Commit(); err != nil {
		return classifyStoreErr(err, "committing batch")
	}
	return nil
}

// validateOp checks the entity/field whitelist for one operation.
func validateOp(op seating.WriteOp) error {
	var fields map[string]bool
	switch op.Entity {
	case seating.EntityGuest:
		fields = guestWritableFields
	case seating.EntityTable:
		fields = tableWritableFields
	default:
		return fmt.Errorf("unknown entity %q", op.Entity)
	}
	if op.ID == 0 {
		return errors.New("missing record id")
	}
	if op.Delete {
		return nil
	}
	if !fields[op.Field] {
		return fmt.Errorf("field %q is not writable on %s", op.Field, op.Entity)
	}
	return nil
}

// MySQL error numbers that indicate a condition worth retrying.
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// classifyStoreErr maps a driver error onto the engine taxonomy.
// Deadlocks and lock-wait timeouts are transient; everything else the
// store rejects is permanent.
func classifyStoreErr(err error, msg string) error {
	kind := seating.KindPermanent
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrLockWaitTimeout, mysqlErrDeadlock:
			kind = seating.KindTransient
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = seating.KindTransient
	}
	return &seating.Error{Kind: kind, Message: msg, Err: err}
}
