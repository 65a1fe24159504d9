package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/erazemk/kns/internal/db"
	"github.com/erazemk/kns/internal/model"
)

const itemColumns = `i.id, i.item_name, i.category, i.department, i.location, i.unit, i.description,
	i.unit_price, i.min_stock_level, i.quantity, i.condition, i.status, i.assigned_to, i.image_url,
	i.created_at, i.updated_at, COALESCE(u.full_name, '')`

const itemFrom = ` FROM inventory_items i LEFT JOIN users u ON u.id = i.assigned_to`

// defectiveSQL matches written-off conditions.
const defectiveSQL = `LOWER(COALESCE(i.condition, '')) IN ('lost', 'stolen', 'damaged', 'lost/stolen')`

// optionalItemColumns returns the optional item columns present in the schema.
func optionalItemColumns(ctx context.Context, d *db.DB) ([]string, error) {
	var present []string
	for _, col := range model.OptionalItemColumns {
		ok, err := d.HasColumn(ctx, model.EntityItems, col)
		if err != nil {
			return nil, fmt.Errorf("probing item columns: %w", classify(err))
		}
		if ok {
			present = append(present, col)
		}
	}
	return present, nil
}

// ItemColumns returns the set of item columns the schema supports.
func ItemColumns(ctx context.Context, d *db.DB) (map[string]bool, error) {
	cols, err := d.Columns(ctx, model.EntityItems)
	if err != nil {
		return nil, fmt.Errorf("probing item columns: %w", classify(err))
	}
	return cols, nil
}

func selectItems(optional []string) string {
	q := `SELECT ` + itemColumns
	for _, col := range optional {
		q += `, i.` + col
	}
	return q + itemFrom
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner, optional []string) (*model.Item, error) {
	var (
		item                                 model.Item
		category, department, location, unit sql.NullString
		description, imageURL, assignedTo    sql.NullString
		price                                decimal.NullDecimal
	)
	extra := make([]sql.NullString, len(optional))

	dest := []any{&item.ID, &item.Name, &category, &department, &location, &unit, &description,
		&price, &item.MinStockLevel, &item.Quantity, &item.Condition, &item.Status, &assignedTo, &imageURL,
		&item.CreatedAt, &item.UpdatedAt, &item.AssignedName}
	for i := range extra {
		dest = append(dest, &extra[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	item.Category = category.String
	// department is canonical; location is the legacy name for the same field.
	item.Department = department.String
	if item.Department == "" {
		item.Department = location.String
	}
	item.Unit = unit.String
	item.Description = description.String
	item.ImageURL = imageURL.String
	if price.Valid {
		item.UnitPrice = price.Decimal
	}
	if assignedTo.Valid {
		s := assignedTo.String
		item.AssignedTo = &s
	}
	for i, col := range optional {
		switch col {
		case model.ColumnBrand:
			item.Brand = extra[i].String
		case model.ColumnType:
			item.Type = extra[i].String
		case model.ColumnSupplier:
			item.Supplier = extra[i].String
		}
	}
	return &item, nil
}

// CreateItem inserts an item. Optional columns are only written when set, so
// an item stripped with Core fits any schema version. A missing ID gets a
// random one.
func CreateItem(ctx context.Context, d *db.DB, item model.Item) (*model.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	if item.MinStockLevel <= 0 {
		item.MinStockLevel = model.DefaultMinStockLevel
	}
	if item.Status == "" {
		item.Status = model.ItemStatusAvailable
	}
	if item.Condition == "" {
		item.Condition = model.ConditionGood
	}
	now := time.Now().UTC()

	cols := []string{"id", "item_name", "category", "department", "location", "unit", "description",
		"unit_price", "min_stock_level", "quantity", "condition", "status", "assigned_to", "image_url",
		"created_at", "updated_at"}
	args := []any{item.ID, item.Name, item.Category, item.Department, item.Department, item.Unit, item.Description,
		item.UnitPrice, item.MinStockLevel, item.Quantity, item.Condition, item.Status, item.AssignedTo, item.ImageURL,
		now, now}

	for _, opt := range []struct{ col, val string }{
		{model.ColumnBrand, item.Brand},
		{model.ColumnType, item.Type},
		{model.ColumnSupplier, item.Supplier},
	} {
		if opt.val != "" {
			cols = append(cols, opt.col)
			args = append(args, opt.val)
		}
	}

	query := `INSERT INTO inventory_items (` + strings.Join(cols, ", ") + `) VALUES (` +
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + `)`
	if _, err := d.ExecContext(ctx, d.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("creating item: %w", classify(err))
	}

	return GetItem(ctx, d, item.ID)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, d *db.DB, id string) (*model.Item, error) {
	optional, err := optionalItemColumns(ctx, d)
	if err != nil {
		return nil, err
	}

	row := d.QueryRowContext(ctx, d.Rebind(selectItems(optional)+` WHERE i.id = ?`), id)
	item, err := scanItem(row, optional)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", classify(err))
	}
	return item, nil
}

// ListItems returns items matching the filter, newest first.
func ListItems(ctx context.Context, d *db.DB, f model.ItemFilter) ([]model.Item, error) {
	optional, err := optionalItemColumns(ctx, d)
	if err != nil {
		return nil, err
	}

	query := selectItems(optional) + ` WHERE 1=1`
	var args []any

	if f.Category != "" {
		query += ` AND i.category = ?`
		args = append(args, f.Category)
	}
	if f.Condition != "" {
		query += ` AND LOWER(i.condition) = LOWER(?)`
		args = append(args, f.Condition)
	}
	if f.Search != "" {
		query += ` AND (LOWER(i.item_name) LIKE ? OR LOWER(i.id) LIKE ?)`
		like := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, like, like)
	}
	if f.AssignedTo != "" {
		query += ` AND i.assigned_to = ?`
		args = append(args, f.AssignedTo)
	}

	query += ` ORDER BY i.created_at DESC, i.id`

	return queryItems(ctx, d, query, args, optional)
}

// LowStockItems returns active items at or below their reorder threshold.
func LowStockItems(ctx context.Context, d *db.DB) ([]model.Item, error) {
	optional, err := optionalItemColumns(ctx, d)
	if err != nil {
		return nil, err
	}

	query := selectItems(optional) + ` WHERE NOT ` + defectiveSQL +
		` AND i.quantity <= CASE WHEN i.min_stock_level > 0 THEN i.min_stock_level ELSE ? END
		 ORDER BY i.quantity, i.item_name`
	return queryItems(ctx, d, query, []any{model.DefaultMinStockLevel}, optional)
}

func queryItems(ctx context.Context, d *db.DB, query string, args []any, optional []string) ([]model.Item, error) {
	rows, err := d.QueryContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", classify(err))
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows, optional)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem applies a patch and returns the updated item.
// Returns model.ErrNotFound if the item does not exist.
func UpdateItem(ctx context.Context, d *db.DB, id string, p model.ItemPatch) (*model.Item, error) {
	var sets []string
	var args []any
	set := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if p.Name != nil {
		set("item_name", *p.Name)
	}
	if p.Category != nil {
		set("category", *p.Category)
	}
	if p.Department != nil {
		set("department", *p.Department)
		set("location", *p.Department)
	}
	if p.Unit != nil {
		set("unit", *p.Unit)
	}
	if p.Description != nil {
		set("description", *p.Description)
	}
	if p.UnitPrice != nil {
		set("unit_price", *p.UnitPrice)
	}
	if p.MinStockLevel != nil {
		set("min_stock_level", *p.MinStockLevel)
	}
	if p.Quantity != nil {
		set("quantity", *p.Quantity)
	}
	if p.Condition != nil {
		set("condition", *p.Condition)
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.AssignedTo != nil {
		// An empty string clears the assignment.
		if *p.AssignedTo == "" {
			set("assigned_to", nil)
		} else {
			set("assigned_to", *p.AssignedTo)
		}
	}
	if p.ImageURL != nil {
		set("image_url", *p.ImageURL)
	}
	if p.Brand != nil {
		set(model.ColumnBrand, *p.Brand)
	}
	if p.Type != nil {
		set(model.ColumnType, *p.Type)
	}
	if p.Supplier != nil {
		set(model.ColumnSupplier, *p.Supplier)
	}

	if len(sets) == 0 {
		item, err := GetItem(ctx, d, id)
		if err == nil && item == nil {
			return nil, model.ErrNotFound
		}
		return item, err
	}

	set("updated_at", time.Now().UTC())
	args = append(args, id)

	result, err := d.ExecContext(ctx,
		d.Rebind(`UPDATE inventory_items SET `+strings.Join(sets, ", ")+` WHERE id = ?`), args...)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", classify(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}

	return GetItem(ctx, d, id)
}

// DeleteItem permanently removes an item. Its movement history is kept.
func DeleteItem(ctx context.Context, d *db.DB, id string) error {
	result, err := d.ExecContext(ctx, d.Rebind(`DELETE FROM inventory_items WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", classify(err))
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
