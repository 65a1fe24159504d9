package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/model"
)

// defaultIDPrefix is used for items whose category yields no letters.
const defaultIDPrefix = "ITM"

// IDPrefix returns the identifier prefix for a category: its first three
// letters upper-cased.
func IDPrefix(category string) string {
	var b strings.Builder
	for _, r := range category {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if b.Len() == 3 {
			break
		}
	}
	if b.Len() == 0 {
		return defaultIDPrefix
	}
	return b.String()
}

// GenerateItemID allocates the next identifier for a category, e.g. LAP-0001.
// Sequences are kept per prefix.
func GenerateItemID(ctx context.Context, d *db.DB, category string) (string, error) {
	prefix := IDPrefix(category)

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", classify(err))
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, d.Rebind(
		`INSERT INTO item_sequences (prefix, last_value) VALUES (?, 1)
		 ON CONFLICT (prefix) DO UPDATE SET last_value = item_sequences.last_value + 1`),
		prefix,
	)
	if err != nil {
		return "", fmt.Errorf("advancing item sequence: %w", classify(err))
	}

	var n int
	err = tx.QueryRowContext(ctx, d.Rebind(
		`SELECT last_value FROM item_sequences WHERE prefix = ?`), prefix,
	).Scan(&n)
	if err != nil {
		return "", fmt.Errorf("reading item sequence: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing item sequence: %w", classify(err))
	}

	return fmt.Sprintf("%s-%04d", prefix, n), nil
}

// AdjustQuantity changes an item's quantity by delta, optionally reassigning
// it. Results below zero are refused.
func AdjustQuantity(ctx context.Context, d *db.DB, itemID string, delta int, assignedTo *string) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", classify(err))
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, d.Rebind(
		`SELECT quantity FROM inventory_items WHERE id = ?`), itemID,
	).Scan(&current)
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking quantity: %w", classify(err))
	}

	next := current + delta
	if next < 0 {
		return model.Invalid("quantity", fmt.Sprintf("insufficient quantity: have %d, need %d", current, -delta))
	}

	query := `UPDATE inventory_items SET quantity = ?, updated_at = ?`
	args := []any{next, time.Now().UTC()}
	if assignedTo != nil {
		query += `, assigned_to = ?`
		if *assignedTo == "" {
			args = append(args, nil)
		} else {
			args = append(args, *assignedTo)
		}
	}
	query += ` WHERE id = ?`
	args = append(args, itemID)

	if _, err := tx.ExecContext(ctx, d.Rebind(query), args...); err != nil {
		return fmt.Errorf("adjusting quantity: %w", classify(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing quantity adjustment: %w", classify(err))
	}
	return nil
}

// ApproveUser grants a pending or rejected user access.
func ApproveUser(ctx context.Context, d *db.DB, id string) error {
	return setUserStatus(ctx, d, id, model.UserApproved)
}

// RejectUser denies a user access.
func RejectUser(ctx context.Context, d *db.DB, id string) error {
	return setUserStatus(ctx, d, id, model.UserRejected)
}

func setUserStatus(ctx context.Context, d *db.DB, id, status string) error {
	result, err := d.ExecContext(ctx, d.Rebind(`UPDATE users SET status = ? WHERE id = ?`), status, id)
	if err != nil {
		return fmt.Errorf("setting user status: %w", classify(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
