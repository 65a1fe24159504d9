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

const movementSelect = `SELECT m.id, m.item_id, m.user_id, m.movement_type, m.display_type, m.quantity, m.reason,
	        m.from_location, m.to_location, m.assigned_to, m.created_at,
	        COALESCE(i.item_name, ''), COALESCE(u.full_name, '')
	 FROM stock_movements m
	 LEFT JOIN inventory_items i ON i.id = m.item_id
	 LEFT JOIN users u ON u.id = m.user_id`

// CreateMovement appends a movement to the log.
func CreateMovement(ctx context.Context, d *db.DB, m model.Movement) (*model.Movement, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Quantity <= 0 {
		m.Quantity = 1
	}
	if m.Kind == "" && m.DisplayType != "" {
		m.Kind = m.DisplayType.Kind()
	}

	var userID any
	if m.UserID != "" {
		userID = m.UserID
	}

	_, err := d.ExecContext(ctx, d.Rebind(
		`INSERT INTO stock_movements (id, item_id, user_id, movement_type, display_type, quantity, reason,
		                              from_location, to_location, assigned_to, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.ItemID, userID, m.Kind, string(m.DisplayType), m.Quantity, m.Reason,
		m.FromLocation, m.ToLocation, m.AssignedTo, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("recording movement: %w", classify(err))
	}

	return GetMovement(ctx, d, m.ID)
}

// GetMovement returns a movement by ID.
func GetMovement(ctx context.Context, d *db.DB, id string) (*model.Movement, error) {
	row := d.QueryRowContext(ctx, d.Rebind(movementSelect+` WHERE m.id = ?`), id)
	m, err := scanMovement(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting movement: %w", classify(err))
	}
	return m, nil
}

// ListMovements returns movements, newest first.
func ListMovements(ctx context.Context, d *db.DB, f model.MovementFilter) ([]model.Movement, error) {
	query := movementSelect + ` WHERE 1=1`
	var args []any

	if f.ItemID != "" {
		query += ` AND m.item_id = ?`
		args = append(args, f.ItemID)
	}
	if f.UserID != "" {
		query += ` AND m.user_id = ?`
		args = append(args, f.UserID)
	}
	if f.Kind != "" {
		query += ` AND m.movement_type = ?`
		args = append(args, f.Kind)
	}
	if !f.Since.IsZero() {
		query += ` AND m.created_at >= ?`
		args = append(args, f.Since.UTC())
	}
	if !f.Until.IsZero() {
		query += ` AND m.created_at < ?`
		args = append(args, f.Until.UTC())
	}

	query += ` ORDER BY m.created_at DESC, m.id`

	rows, err := d.QueryContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", classify(err))
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning movement: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

// ClearMovements empties the movement log and returns the number of rows removed.
func ClearMovements(ctx context.Context, d *db.DB) (int64, error) {
	result, err := d.ExecContext(ctx, `DELETE FROM stock_movements`)
	if err != nil {
		return 0, fmt.Errorf("clearing movements: %w", classify(err))
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func scanMovement(row rowScanner) (*model.Movement, error) {
	var (
		m                          model.Movement
		userID, displayType        sql.NullString
		reason, from, to, assigned sql.NullString
	)
	if err := row.Scan(&m.ID, &m.ItemID, &userID, &m.Kind, &displayType, &m.Quantity, &reason,
		&from, &to, &assigned, &m.CreatedAt, &m.ItemName, &m.UserName); err != nil {
		return nil, err
	}
	m.UserID = userID.String
	m.DisplayType = model.DisplayType(displayType.String)
	m.Reason = reason.String
	m.FromLocation = from.String
	m.ToLocation = to.String
	if assigned.Valid {
		s := assigned.String
		m.AssignedTo = &s
	}
	return &m, nil
}
