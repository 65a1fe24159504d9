package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/kns/internal/model"
)

// Uncategorized is the group of items without a category.
const Uncategorized = "Uncategorized"

// Stock status labels and classes of a group.
const (
	StockIn  = "In Stock"
	StockLow = "Low Stock"
	StockOut = "Out of Stock"

	ClassLowStock   = "low-stock"
	ClassOutOfStock = "out-of-stock"
)

// Group summarizes the items of one category.
type Group struct {
	Key             string          `json:"key"`
	Category        string          `json:"category"`
	Department      string          `json:"department"`
	Quantity        int             `json:"quantity"`
	MinStock        int             `json:"min_stock"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	FirstAdded      time.Time       `json:"first_added"`
	LastUpdated     time.Time       `json:"last_updated"`
	AssignedNames   []string        `json:"assigned_names"`
	IDs             []string        `json:"ids"`
	Status          StatusInfo      `json:"status"`
	AssignedDisplay string          `json:"assigned_display"`
}

// GroupKey returns the category bucket of an item.
func GroupKey(item model.Item) string {
	if item.Category == "" {
		return Uncategorized
	}
	return item.Category
}

// StockStatus classifies a quantity against a reorder threshold.
func StockStatus(quantity, threshold int) StatusInfo {
	switch {
	case quantity == 0:
		return StatusInfo{Label: StockOut, Class: ClassOutOfStock}
	case quantity <= threshold:
		return StatusInfo{Label: StockLow, Class: ClassLowStock}
	}
	return StatusInfo{Label: StockIn, Class: ClassInStock}
}

// AssignedDisplay renders a list of assignee names: "Unassigned", "a, b" or
// "a + N others".
func AssignedDisplay(names []string) string {
	switch {
	case len(names) == 0:
		return "Unassigned"
	case len(names) > 2:
		return fmt.Sprintf("%s + %d others", names[0], len(names)-1)
	}
	return strings.Join(names, ", ")
}

// GroupByCategory buckets items by category, keeping first-seen order. An
// item with zero quantity counts as one unit; the threshold, department and
// price come from the first member.
func GroupByCategory(items []model.Item) []Group {
	var groups []*Group
	index := make(map[string]*Group)
	seenNames := make(map[string]map[string]bool)

	for _, item := range items {
		key := GroupKey(item)
		g, ok := index[key]
		if !ok {
			g = &Group{
				Key:           key,
				Category:      item.Category,
				Department:    item.Department,
				MinStock:      item.Threshold(),
				UnitPrice:     item.UnitPrice,
				FirstAdded:    item.CreatedAt,
				LastUpdated:   item.UpdatedAt,
				AssignedNames: []string{},
				IDs:           []string{},
			}
			index[key] = g
			seenNames[key] = make(map[string]bool)
			groups = append(groups, g)
		}

		qty := item.Quantity
		if qty == 0 {
			qty = 1
		}
		g.Quantity += qty
		g.IDs = append(g.IDs, item.ID)

		if name := item.AssignedName; name != "" && !seenNames[key][name] {
			seenNames[key][name] = true
			g.AssignedNames = append(g.AssignedNames, name)
		}
		if !item.CreatedAt.IsZero() && (g.FirstAdded.IsZero() || item.CreatedAt.Before(g.FirstAdded)) {
			g.FirstAdded = item.CreatedAt
		}
		if !item.UpdatedAt.IsZero() && item.UpdatedAt.After(g.LastUpdated) {
			g.LastUpdated = item.UpdatedAt
		}
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		g.Status = StockStatus(g.Quantity, g.MinStock)
		g.AssignedDisplay = AssignedDisplay(g.AssignedNames)
		out[i] = *g
	}
	return out
}

// Row is one item of the detail view.
type Row struct {
	model.Item
	StatusLabel     string `json:"status_label"`
	StatusClass     string `json:"status_class"`
	BrandType       string `json:"brand_type"`
	DepartmentLabel string `json:"department_label"`
	SupplierLabel   string `json:"supplier_label"`
	ConditionLabel  string `json:"condition_label"`
	AssignedLabel   string `json:"assigned_label"`
}

// DetailRows returns the items of one category group with display fields.
func DetailRows(items []model.Item, groupKey string) []Row {
	rows := []Row{}
	for _, item := range items {
		if GroupKey(item) != groupKey {
			continue
		}
		rows = append(rows, detailRow(item))
	}
	return rows
}

func detailRow(item model.Item) Row {
	status := ItemStatus(item)
	r := Row{
		Item:            item,
		StatusLabel:     status.Label,
		StatusClass:     status.Class,
		BrandType:       "-",
		DepartmentLabel: or(item.Department, "N/A"),
		SupplierLabel:   or(item.Supplier, "-"),
		ConditionLabel:  or(item.Condition, "Good"),
		AssignedLabel:   or(item.AssignedName, "Unassigned"),
	}
	if item.Brand != "" && item.Type != "" {
		r.BrandType = item.Brand + " " + item.Type
	}
	return r
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
