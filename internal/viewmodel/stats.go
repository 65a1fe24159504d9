package viewmodel

import "github.com/erazemk/kns/internal/model"

// Stats are the summary cards of the inventory page.
type Stats struct {
	TotalItems        int `json:"total_items"`
	TotalQuantity     int `json:"total_quantity"`
	AssignedQuantity  int `json:"assigned_quantity"`
	DamagedQuantity   int `json:"damaged_quantity"`
	AvailableQuantity int `json:"available_quantity"`
}

// SummaryStats computes the summary cards over all items, written-off ones
// included. Available units are those neither out nor written off.
func SummaryStats(items []model.Item) Stats {
	s := Stats{TotalItems: len(items)}
	for _, item := range items {
		s.TotalQuantity += item.Quantity

		out := model.IsOut(item.Status)
		bad := item.Defective()
		if out {
			s.AssignedQuantity += item.Quantity
		}
		if bad {
			s.DamagedQuantity += item.Quantity
		}
		if !out && !bad {
			s.AvailableQuantity += item.Quantity
		}
	}
	return s
}

// LowStockCount returns how many items are at or below their threshold.
func LowStockCount(items []model.Item) int {
	n := 0
	for _, item := range items {
		if item.Quantity <= item.Threshold() {
			n++
		}
	}
	return n
}
