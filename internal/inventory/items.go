package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/viewmodel"
)

// ItemInput carries the user-editable fields of an item.
type ItemInput struct {
	Name          string          `json:"item_name"`
	Category      string          `json:"category"`
	Department    string          `json:"department"`
	Unit          string          `json:"unit"`
	Description   string          `json:"description"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	MinStockLevel int             `json:"min_stock_level"`
	ImageURL      string          `json:"image_url"`
	Brand         string          `json:"brand"`
	Type          string          `json:"type"`
	Supplier      string          `json:"supplier"`
}

func (in ItemInput) trimmed() ItemInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Department = strings.TrimSpace(in.Department)
	in.Unit = strings.TrimSpace(in.Unit)
	in.Description = strings.TrimSpace(in.Description)
	in.Brand = strings.TrimSpace(in.Brand)
	in.Type = strings.TrimSpace(in.Type)
	in.Supplier = strings.TrimSpace(in.Supplier)
	return in
}

func (in ItemInput) validate() error {
	if in.Name == "" {
		return model.Invalid("item_name", "item name is required")
	}
	if in.Category == "" {
		return model.Invalid("category", "category is required")
	}
	if in.Department == "" {
		return model.Invalid("department", "department is required")
	}
	if in.UnitPrice.IsNegative() {
		return model.Invalid("unit_price", "unit price cannot be negative")
	}
	if in.MinStockLevel < 0 {
		return model.Invalid("min_stock_level", "minimum stock level cannot be negative")
	}
	return nil
}

// item builds a fresh single-unit item from the input.
func (in ItemInput) item(name string) model.Item {
	return model.Item{
		Name:          name,
		Category:      in.Category,
		Department:    in.Department,
		Unit:          in.Unit,
		Description:   in.Description,
		UnitPrice:     in.UnitPrice,
		MinStockLevel: in.MinStockLevel,
		Quantity:      1,
		Condition:     model.ConditionGood,
		Status:        model.ItemStatusAvailable,
		ImageURL:      in.ImageURL,
		Brand:         in.Brand,
		Type:          in.Type,
		Supplier:      in.Supplier,
	}
}

// CreateItem adds a single item with quantity 1.
func (c *Controller) CreateItem(ctx context.Context, actorID string, in ItemInput) (*model.Item, error) {
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return nil, err
	}

	item := in.item(in.Name)
	item.ID = c.newItemID(ctx, item.Category)
	created, err := c.insertItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	log.Info().Str("actor", actorID).Str("item", created.ID).Msg("item created")
	return created, nil
}

// BulkInput describes count identical items named "<name> - 001" onwards.
type BulkInput struct {
	ItemInput
	Count int `json:"count"`
}

// BulkResult summarizes a bulk creation. LastError holds the message of the
// last failed insert.
type BulkResult struct {
	SuccessCount int    `json:"success_count"`
	FailCount    int    `json:"fail_count"`
	LastError    string `json:"last_error,omitempty"`
}

// BulkCreateItems inserts the items one at a time and continues past
// failures. A failed index leaves a gap in the numbering.
func (c *Controller) BulkCreateItems(ctx context.Context, actorID string, in BulkInput) (*BulkResult, error) {
	in.ItemInput = in.trimmed()
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.Count < 1 {
		return nil, model.Invalid("count", "count must be at least 1")
	}
	if in.Unit == "" {
		return nil, model.Invalid("unit", "unit is required")
	}

	res := &BulkResult{}
	for i := 1; i <= in.Count; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		item := in.item(fmt.Sprintf("%s - %03d", in.Name, i))
		item.ID = c.newItemID(ctx, item.Category)
		if _, err := c.insertItem(ctx, item); err != nil {
			log.Warn().Err(err).Str("name", item.Name).Msg("bulk insert failed")
			res.FailCount++
			res.LastError = err.Error()
			continue
		}
		res.SuccessCount++
	}

	c.metrics.Bulk("create", res.SuccessCount, res.FailCount)
	log.Info().Str("actor", actorID).Int("created", res.SuccessCount).Int("failed", res.FailCount).Msg("bulk create finished")
	return res, nil
}

// newItemID asks the store for the next identifier of the category and falls
// back to a random UUID when the procedure fails.
func (c *Controller) newItemID(ctx context.Context, category string) string {
	id, err := c.store.GenerateItemID(ctx, category)
	if err != nil || id == "" {
		log.Warn().Err(err).Str("category", category).Msg("generating item id, using uuid")
		return uuid.NewString()
	}
	return id
}

// insertItem writes item with the optional columns the schema is known to
// carry. An unknown column is retried once without any optional column, and a
// duplicate identifier is retried once with a fresh one.
func (c *Controller) insertItem(ctx context.Context, item model.Item) (*model.Item, error) {
	item = fitColumns(item, c.itemColumns(ctx))

	var schemaRetried, conflictRetried bool
	for {
		created, err := c.store.CreateItem(ctx, item)
		switch {
		case err == nil:
			return created, nil
		case errors.Is(err, model.ErrSchemaMismatch) && !schemaRetried:
			schemaRetried = true
			c.metrics.SchemaRetry()
			c.forgetColumns()
			item = item.Core()
		case errors.Is(err, model.ErrConflict) && !conflictRetried:
			conflictRetried = true
			item.ID = c.newItemID(ctx, item.Category)
		default:
			return nil, err
		}
	}
}

// fitColumns clears the optional fields whose column is missing from cols.
// A nil cols means the schema is unknown and leaves the item untouched.
func fitColumns(item model.Item, cols map[string]bool) model.Item {
	if cols == nil {
		return item
	}
	if !cols[model.ColumnBrand] {
		item.Brand = ""
	}
	if !cols[model.ColumnType] {
		item.Type = ""
	}
	if !cols[model.ColumnSupplier] {
		item.Supplier = ""
	}
	return item
}

// EditItem updates the descriptive fields of an item. Quantity, status and
// condition only change through movements and requests.
func (c *Controller) EditItem(ctx context.Context, actorID, id string, in ItemInput) (*model.Item, error) {
	in = in.trimmed()
	if err := in.validate(); err != nil {
		return nil, err
	}

	p := model.ItemPatch{
		Name:        &in.Name,
		Category:    &in.Category,
		Department:  &in.Department,
		Description: &in.Description,
		UnitPrice:   &in.UnitPrice,
	}
	if in.Unit != "" {
		p.Unit = &in.Unit
	}
	if in.MinStockLevel > 0 {
		p.MinStockLevel = &in.MinStockLevel
	}
	if in.ImageURL != "" {
		p.ImageURL = &in.ImageURL
	}

	cols := c.itemColumns(ctx)
	if cols == nil || cols[model.ColumnBrand] {
		p.Brand = &in.Brand
	}
	if cols == nil || cols[model.ColumnType] {
		p.Type = &in.Type
	}
	if cols == nil || cols[model.ColumnSupplier] {
		p.Supplier = &in.Supplier
	}

	item, err := c.store.UpdateItem(ctx, id, p)
	if errors.Is(err, model.ErrSchemaMismatch) {
		c.metrics.SchemaRetry()
		c.forgetColumns()
		p.Brand, p.Type, p.Supplier = nil, nil, nil
		item, err = c.store.UpdateItem(ctx, id, p)
	}
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}

	log.Info().Str("actor", actorID).Str("item", id).Msg("item updated")
	return item, nil
}

// SetItemImage records the public URL of an uploaded item image.
func (c *Controller) SetItemImage(ctx context.Context, actorID, id, url string) (*model.Item, error) {
	item, err := c.store.UpdateItem(ctx, id, model.ItemPatch{ImageURL: &url})
	if err != nil {
		return nil, fmt.Errorf("updating item image: %w", err)
	}
	log.Info().Str("actor", actorID).Str("item", id).Msg("item image updated")
	return item, nil
}

// DeleteItem removes an item.
func (c *Controller) DeleteItem(ctx context.Context, actorID, id string) error {
	if err := c.store.DeleteItem(ctx, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	log.Info().Str("actor", actorID).Str("item", id).Msg("item deleted")
	return nil
}

// BulkDeleteResult summarizes a bulk deletion.
type BulkDeleteResult struct {
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// BulkDelete deletes the selected items one by one. The selection is cleared
// whatever the outcome.
func (c *Controller) BulkDelete(ctx context.Context, actorID string, state *viewmodel.State) *BulkDeleteResult {
	res := &BulkDeleteResult{}
	for _, id := range state.Selection {
		if err := c.store.DeleteItem(ctx, id); err != nil {
			log.Warn().Err(err).Str("item", id).Msg("bulk delete failed")
			res.Failed++
			continue
		}
		res.Deleted++
	}
	state.ClearSelection()

	c.metrics.Bulk("delete", res.Deleted, res.Failed)
	log.Info().Str("actor", actorID).Int("deleted", res.Deleted).Int("failed", res.Failed).Msg("bulk delete finished")
	return res
}
