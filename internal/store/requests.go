package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/model"
)

const requestSelect = `SELECT r.id, r.user_id, r.item_id, r.quantity, r.reason, r.status, r.admin_notes,
	        r.department, r.created_at, r.updated_at,
	        COALESCE(i.item_name, ''), COALESCE(u.full_name, '')
	 FROM requests r
	 LEFT JOIN inventory_items i ON i.id = r.item_id
	 LEFT JOIN users u ON u.id = r.user_id`

// CreateRequest stores a new pending request.
func CreateRequest(ctx context.Context, d *db.DB, r model.Request) (*model.Request, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Quantity <= 0 {
		return nil, model.Invalid("quantity", "must be positive")
	}
	now := time.Now().UTC()

	_, err := d.ExecContext(ctx, d.Rebind(
		`INSERT INTO requests (id, user_id, item_id, quantity, reason, status, department, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.ID, r.UserID, r.ItemID, r.Quantity, r.Reason, model.RequestPending, r.Department, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", classify(err))
	}

	return GetRequest(ctx, d, r.ID)
}

// GetRequest returns a request by ID.
func GetRequest(ctx context.Context, d *db.DB, id string) (*model.Request, error) {
	row := d.QueryRowContext(ctx, d.Rebind(requestSelect+` WHERE r.id = ?`), id)
	r, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", classify(err))
	}
	return r, nil
}

// ListRequests returns requests, newest first.
func ListRequests(ctx context.Context, d *db.DB, f model.RequestFilter) ([]model.Request, error) {
	query := requestSelect + ` WHERE 1=1`
	var args []any

	if f.UserID != "" {
		query += ` AND r.user_id = ?`
		args = append(args, f.UserID)
	}
	if f.ItemID != "" {
		query += ` AND r.item_id = ?`
		args = append(args, f.ItemID)
	}
	if f.Status != "" {
		query += ` AND r.status = ?`
		args = append(args, f.Status)
	}
	if !f.Since.IsZero() {
		query += ` AND r.created_at >= ?`
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		query += ` AND r.created_at < ?`
		args = append(args, f.Until.UTC())
	}

	query += ` ORDER BY r.created_at DESC, r.id`

	rows, err := d.QueryContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", classify(err))
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

// UpdateRequestStatus moves a request to a new status, recording admin notes.
// Only pending→approved, pending→rejected and approved→fulfilled are allowed.
func UpdateRequestStatus(ctx context.Context, d *db.DB, id, status, notes string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", classify(err))
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, d.Rebind(`SELECT status FROM requests WHERE id = ?`), id).Scan(&current)
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading request status: %w", classify(err))
	}
	if !model.CanTransition(current, status) {
		return model.Invalid("status", fmt.Sprintf("cannot move request from %s to %s", current, status))
	}

	_, err = tx.ExecContext(ctx, d.Rebind(
		`UPDATE requests SET status = ?, admin_notes = ?, updated_at = ? WHERE id = ?`),
		status, notes, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating request status: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing request status: %w", classify(err))
	}
	return nil
}

// FulfillRequest fulfils an approved request in a single transaction: the
// item quantity is decremented, an issue movement is logged and the request
// is marked fulfilled. actorID may be empty.
func FulfillRequest(ctx context.Context, d *db.DB, id, actorID string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", classify(err))
	}
	defer tx.Rollback()

	var status, itemID, requester string
	var quantity int
	err = tx.QueryRowContext(ctx, d.Rebind(
		`SELECT status, item_id, user_id, quantity FROM requests WHERE id = ?`), id,
	).Scan(&status, &itemID, &requester, &quantity)
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading request: %w", classify(err))
	}
	if !model.CanTransition(status, model.RequestFulfilled) {
		return model.Invalid("status", fmt.Sprintf("cannot fulfil a %s request", status))
	}

	var available int
	var department sql.NullString
	err = tx.QueryRowContext(ctx, d.Rebind(
		`SELECT quantity, COALESCE(NULLIF(department, ''), location) FROM inventory_items WHERE id = ?`), itemID,
	).Scan(&available, &department)
	if err == sql.ErrNoRows {
		return fmt.Errorf("requested item %s: %w", itemID, model.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking available quantity: %w", classify(err))
	}
	if available < quantity {
		return model.Invalid("quantity", fmt.Sprintf("insufficient quantity: have %d, need %d", available, quantity))
	}

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, d.Rebind(
		`UPDATE inventory_items SET quantity = quantity - ?, updated_at = ? WHERE id = ?`),
		quantity, now, itemID,
	); err != nil {
		return fmt.Errorf("updating item quantity: %w", classify(err))
	}

	var actor any
	if actorID != "" {
		actor = actorID
	}
	if _, err := tx.ExecContext(ctx, d.Rebind(
		`INSERT INTO stock_movements (id, item_id, user_id, movement_type, display_type, quantity, reason,
		                              from_location, to_location, assigned_to, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		uuid.NewString(), itemID, actor, model.MovementOut, string(model.DisplayIssue), quantity,
		"[Issue] Request fulfilled", department.String, "", requester, now,
	); err != nil {
		return fmt.Errorf("recording fulfilment movement: %w", classify(err))
	}

	if _, err := tx.ExecContext(ctx, d.Rebind(
		`UPDATE requests SET status = ?, updated_at = ? WHERE id = ?`),
		model.RequestFulfilled, now, id,
	); err != nil {
		return fmt.Errorf("updating request status: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing fulfilment: %w", classify(err))
	}
	return nil
}

func scanRequest(row rowScanner) (*model.Request, error) {
	var (
		r                          model.Request
		reason, notes, department sql.NullString
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.ItemID, &r.Quantity, &reason, &r.Status, &notes,
		&department, &r.CreatedAt, &r.UpdatedAt, &r.ItemName, &r.UserName); err != nil {
		return nil, err
	}
	r.Reason = reason.String
	r.AdminNotes = notes.String
	r.Department = department.String
	return &r, nil
}
