package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/avelara/seatsync/internal/model"
)

// GuestRepo provides data access for guests.
type GuestRepo struct {
	db *sql.DB
}

// NewGuestRepo constructs a GuestRepo with the given DB handle.
func NewGuestRepo(db *sql.DB) *GuestRepo {
	return &GuestRepo{db: db}
}

const guestColumns = `id, event_id, owner_id, first_name, last_name, legacy_name,
	phone, email, notes, table_id, created_at, updated_at`

// scanGuest reads one guest row into a model.Guest, mapping nullable
// columns onto pointer fields.
func scanGuest(row interface{ Scan(...any) error }) (model.Guest, error) {
	var (
		g       model.Guest
		phone   sql.NullString
		email   sql.NullString
		notes   sql.NullString
		tableID sql.NullInt64
	)
	err := row.Scan(&g.ID, &g.EventID, &g.OwnerID, &g.FirstName, &g.LastName, &g.LegacyName,
		&phone, &email, &notes, &tableID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return model.Guest{}, err
	}
	if phone.Valid {
		g.Phone = &phone.String
	}
	if email.Valid {
		g.Email = &email.String
	}
	if notes.Valid {
		g.Notes = &notes.String
	}
	if tableID.Valid {
		id := uint64(tableID.Int64)
		g.TableID = &id
	}
	return g, nil
}

// Create inserts a new guest. On success the ID and timestamps are
// populated.
func (r *GuestRepo) Create(ctx context.Context, g *model.Guest) error {
	const qInsert = `INSERT INTO guests (event_id, owner_id, first_name, last_name, legacy_name, phone, email, notes, table_id)
	                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		g.EventID, g.OwnerID, g.FirstName, g.LastName, g.LegacyName, g.Phone, g.Email, g.Notes, g.TableID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)

	const qSelect = `SELECT created_at, updated_at FROM guests WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, g.ID).Scan(&g.CreatedAt, &g.UpdatedAt)
}

// GetByIDAndOwner fetches a guest by id, enforcing ownership.
func (r *GuestRepo) GetByIDAndOwner(ctx context.Context, id, ownerID uint64) (*model.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests WHERE id = ? AND owner_id = ?`
	g, err := scanGuest(r.db.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGuestNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ListByEvent retrieves the full roster of an event in insertion
// order.  The order is load-bearing: name matching is
// first-match-wins over this sequence.
func (r *GuestRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Guest, error) {
	const q = `SELECT ` + guestColumns + ` FROM guests WHERE event_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

// Update overwrites the editable fields of a guest owned by ownerID.
// Returns ErrGuestNotFound when no matching row exists.
func (r *GuestRepo) Update(ctx context.Context, g *model.Guest, ownerID uint64) error {
	const q = `UPDATE guests
	           SET first_name = ?, last_name = ?, legacy_name = ?, phone = ?, email = ?, notes = ?, table_id = ?,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q,
		g.FirstName, g.LastName, g.LegacyName, g.Phone, g.Email, g.Notes, g.TableID, g.ID, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// DeleteByIDAndOwner removes a single guest.
func (r *GuestRepo) DeleteByIDAndOwner(ctx context.Context, id, ownerID uint64) error {
	const q = `DELETE FROM guests WHERE id = ? AND owner_id = ?`
	res, err := r.db.ExecContext(ctx, q, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGuestNotFound
	}
	return nil
}

// DeleteByIDs removes the given guests in bulk, scoped to an owner.
// Returns the number of rows actually deleted; ids belonging to other
// owners are silently skipped.
func (r *GuestRepo) DeleteByIDs(ctx context.Context, ownerID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	query := `DELETE FROM guests WHERE owner_id = ? AND id IN (` + placeholders + `)`
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
