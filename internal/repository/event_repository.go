package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/avelara/seatsync/internal/model"
)

// EventRepo encapsulates database queries for events.  Events own
// their guests and tables exclusively: deleting an event removes
// both, resetting an event clears table assignments and removes the
// tables while preserving the guest roster.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

// Create inserts a new event. On success the event's ID and timestamp
// fields are populated.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	const qInsert = `INSERT INTO events (owner_id, name) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, e.OwnerID, e.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM events WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, e.ID).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// GetByIDAndOwner fetches an event by id, enforcing ownership.
func (r *EventRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Event, error) {
	const q = `SELECT id, owner_id, name, created_at, updated_at FROM events WHERE id = ? AND owner_id = ?`
	var e model.Event
	err := r.db.QueryRowContext(ctx, q, id, ownerID).
		Scan(&e.ID, &e.OwnerID, &e.Name, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	return &e, nil
}

// ListByOwner retrieves all events belonging to an owner, newest first.
func (r *EventRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Event, error) {
	const q = `SELECT id, owner_id, name, created_at, updated_at
	           FROM events WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Name, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// DeleteByIDAndOwner removes an event together with all of its guests
// and tables in one transaction. Returns ErrEventNotFound when the
// event does not exist or belongs to another owner.
func (r *EventRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE event_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE event_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEventNotFound
	}
	return tx.Commit()
}

// Reset clears every guest's table assignment and deletes all tables
// of the event, preserving the guest roster. Runs in one transaction
// so a half-reset state is never observable.
func (r *EventRepo) Reset(ctx context.Context, id, ownerID uint64) error {
	if _, err := r.GetByIDAndOwner(ctx, id, ownerID); err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = NULL WHERE event_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tables WHERE event_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}
