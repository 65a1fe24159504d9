package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a single tracked inventory record. Per-unit items conventionally
// carry quantity 1.
type Item struct {
	ID            string          `json:"id"`
	Name          string          `json:"item_name"`
	Category      string          `json:"category"`
	Department    string          `json:"department"`
	Unit          string          `json:"unit"`
	Description   string          `json:"description,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	MinStockLevel int             `json:"min_stock_level"`
	Quantity      int             `json:"quantity"`
	Condition     string          `json:"condition"`
	Status        string          `json:"status"`
	AssignedTo    *string         `json:"assigned_to,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	Type          string          `json:"type,omitempty"`
	Supplier      string          `json:"supplier,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Joined fields (not always populated).
	AssignedName string `json:"assigned_name,omitempty"`
}

// Item statuses.
const (
	ItemStatusAvailable   = "available"
	ItemStatusAssigned    = "assigned"
	ItemStatusIssued      = "issued"
	ItemStatusTransferred = "transferred"
)

// Item conditions. Written conditions use the capitalised labels of the
// write-off flow; comparisons are case-insensitive.
const (
	ConditionGood       = "good"
	ConditionDamaged    = "Damaged"
	ConditionLost       = "lost"
	ConditionStolen     = "stolen"
	ConditionLostStolen = "Lost/Stolen"
)

// DefaultMinStockLevel is the reorder threshold used when an item has none.
const DefaultMinStockLevel = 5

// Optional item columns. The core column set never includes these.
const (
	ColumnBrand    = "brand"
	ColumnType     = "type"
	ColumnSupplier = "supplier"
)

// OptionalItemColumns lists columns that may be missing from older schemas.
var OptionalItemColumns = []string{ColumnBrand, ColumnType, ColumnSupplier}

// IsDefective reports whether a condition removes an item from active inventory.
func IsDefective(condition string) bool {
	switch strings.ToLower(condition) {
	case "lost", "stolen", "damaged", "lost/stolen":
		return true
	}
	return false
}

// IsOut reports whether a status means the item is with someone.
func IsOut(status string) bool {
	s := strings.ToLower(status)
	return s == ItemStatusIssued || s == ItemStatusAssigned
}

// Defective reports whether the item's condition flags it as written off.
func (i Item) Defective() bool {
	return IsDefective(i.Condition)
}

// Threshold returns the item's reorder threshold, defaulting to 5.
func (i Item) Threshold() int {
	if i.MinStockLevel > 0 {
		return i.MinStockLevel
	}
	return DefaultMinStockLevel
}

// Core returns a copy with the optional columns cleared.
func (i Item) Core() Item {
	i.Brand = ""
	i.Type = ""
	i.Supplier = ""
	return i
}

// ItemPatch lists item fields to change. Nil fields are left untouched; an
// empty AssignedTo clears the assignment.
type ItemPatch struct {
	Name          *string          `json:"item_name,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Department    *string          `json:"department,omitempty"`
	Unit          *string          `json:"unit,omitempty"`
	Description   *string          `json:"description,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	MinStockLevel *int             `json:"min_stock_level,omitempty"`
	Quantity      *int             `json:"quantity,omitempty"`
	Condition     *string          `json:"condition,omitempty"`
	Status        *string          `json:"status,omitempty"`
	AssignedTo    *string          `json:"assigned_to,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	Brand         *string          `json:"brand,omitempty"`
	Type          *string          `json:"type,omitempty"`
	Supplier      *string          `json:"supplier,omitempty"`
}

// ItemFilter narrows item listings at the store level.
type ItemFilter struct {
	Category   string
	Condition  string
	Search     string
	AssignedTo string
}
