// Package viewmodel turns flat item, movement and request records into the
// grouped, filtered and paginated views shown to users. Functions here are
// pure: they perform no I/O and tolerate absent optional fields.
package viewmodel

import (
	"strings"

	"github.com/erazemk/kns/internal/model"
)

// Status classes of individual items.
const (
	ClassAssigned    = "status-assigned"
	ClassIssued      = "status-issued"
	ClassTransferred = "status-transferred"
	ClassInStock     = "in-stock"
)

// Filters is the active filter set of the inventory view.
type Filters struct {
	Search     string `json:"search,omitempty"`
	Department string `json:"department,omitempty"`
	Category   string `json:"category,omitempty"`
	// Status is a status class, e.g. "status-issued".
	Status string `json:"status,omitempty"`
}

// StatusInfo is a display label with its CSS class.
type StatusInfo struct {
	Label string `json:"label"`
	Class string `json:"class"`
}

// ItemStatus maps an item's allocation status to its label and class.
// Unknown or empty statuses read as available.
func ItemStatus(item model.Item) StatusInfo {
	switch strings.ToLower(item.Status) {
	case model.ItemStatusAssigned:
		return StatusInfo{Label: "Assigned", Class: ClassAssigned}
	case model.ItemStatusIssued:
		return StatusInfo{Label: "Issued", Class: ClassIssued}
	case model.ItemStatusTransferred:
		return StatusInfo{Label: "Transferred", Class: ClassTransferred}
	}
	return StatusInfo{Label: "Available", Class: ClassInStock}
}

// ApplyFilters returns the active items matching f. Written-off items are
// always excluded.
func ApplyFilters(items []model.Item, f Filters) []model.Item {
	search := strings.ToLower(f.Search)
	out := make([]model.Item, 0, len(items))

	for _, item := range items {
		if item.Defective() {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.ID), search) {
			continue
		}
		if f.Department != "" && item.Department != f.Department {
			continue
		}
		if f.Category != "" && item.Category != f.Category {
			continue
		}
		if f.Status != "" && ItemStatus(item).Class != f.Status {
			continue
		}
		out = append(out, item)
	}
	return out
}

// ActiveItems returns the items that are not written off.
func ActiveItems(items []model.Item) []model.Item {
	return ApplyFilters(items, Filters{})
}
