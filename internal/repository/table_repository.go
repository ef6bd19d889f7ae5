package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelara/seatsync/internal/model"
)

// TableRepo provides data access for tables.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo constructs a TableRepo with the given DB handle.
func NewTableRepo(db *sql.DB) *TableRepo {
	return &TableRepo{db: db}
}

const tableColumns = `id, event_id, owner_id, name, capacity, color, created_at, updated_at`

func scanTable(row interface{ Scan(...any) error }) (model.Table, error) {
	var (
		t     model.Table
		color sql.NullString
	)
	err := row.Scan(&t.ID, &t.EventID, &t.OwnerID, &t.Name, &t.Capacity, &color, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Table{}, err
	}
	if color.Valid {
		t.Color = &color.String
	}
	return t, nil
}

// Create inserts a new table. On success the ID and timestamps are
// populated.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	const qInsert = `INSERT INTO tables (event_id, owner_id, name, capacity, color) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, t.EventID, t.OwnerID, t.Name, t.Capacity, t.Color)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM tables WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByIDAndOwner fetches a table by id, enforcing ownership.
func (r *TableRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE id = ? AND owner_id = ?`
	t, err := scanTable(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByEvent retrieves all tables of an event in insertion order.
// The order matters: the allocator hands the remainder to the
// earliest tables.
func (r *TableRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Table, error) {
	const q = `SELECT ` + tableColumns + ` FROM tables WHERE event_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Update overwrites name, capacity and color of a table owned by
// ownerID.
func (r *TableRepo) Update(ctx context.Context, t *model.Table, ownerID uint64) error {
	const q = `UPDATE tables SET name = ?, capacity = ?, color = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.Capacity, t.Color, t.ID, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a table and clears the assignment of
// every guest seated at it, in one transaction.  Invariant: a guest
// row never references a missing table.
func (r *TableRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = NULL WHERE table_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTableNotFound
	}
	return tx.Commit()
}
