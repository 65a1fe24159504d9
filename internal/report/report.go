// Package report builds the administrative reports and their CSV exports.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/viewmodel"
)

// UsageLimit is the number of items in a usage-trend report.
const UsageLimit = 10

// Source is the data the reports read.
type Source interface {
	ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, error)
	LowStockItems(ctx context.Context) ([]model.Item, error)
	ListMovements(ctx context.Context, f model.MovementFilter) ([]model.Movement, error)
	ListRequests(ctx context.Context, f model.RequestFilter) ([]model.Request, error)
}

// Range bounds a report in time. Zero bounds are open.
type Range struct {
	From time.Time
	To   time.Time
}

const dateLayout = "2006-01-02"

// ParseRange parses inclusive YYYY-MM-DD dates. Either may be empty.
func ParseRange(from, to string) (Range, error) {
	var r Range
	if from != "" {
		t, err := time.Parse(dateLayout, from)
		if err != nil {
			return r, model.Invalid("start", "dates must be formatted as YYYY-MM-DD")
		}
		r.From = t
	}
	if to != "" {
		t, err := time.Parse(dateLayout, to)
		if err != nil {
			return r, model.Invalid("end", "dates must be formatted as YYYY-MM-DD")
		}
		r.To = t.AddDate(0, 0, 1)
	}
	if !r.From.IsZero() && !r.To.IsZero() && !r.From.Before(r.To) {
		return r, model.Invalid("end", "end date is before start date")
	}
	return r, nil
}

// InventoryReport summarizes the item table.
type InventoryReport struct {
	TotalItems    int          `json:"total_items"`
	TotalQuantity int          `json:"total_quantity"`
	LowStockCount int          `json:"low_stock_count"`
	Movements     int          `json:"movements"`
	Items         []model.Item `json:"items"`
}

// Inventory reports on all items and counts the movements in r.
func Inventory(ctx context.Context, src Source, r Range) (*InventoryReport, error) {
	items, err := src.ListItems(ctx, model.ItemFilter{})
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	movements, err := src.ListMovements(ctx, model.MovementFilter{Since: r.From, Until: r.To})
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}

	rep := &InventoryReport{
		TotalItems:    len(items),
		LowStockCount: viewmodel.LowStockCount(items),
		Movements:     len(movements),
		Items:         nonNil(items),
	}
	for _, it := range items {
		rep.TotalQuantity += it.Quantity
	}
	return rep, nil
}

// Table renders the item details.
func (rep *InventoryReport) Table() [][]string {
	rows := [][]string{{"Item Name", "Category", "Quantity", "Condition", "Department"}}
	for _, it := range rep.Items {
		rows = append(rows, []string{
			it.Name, it.Category, fmt.Sprint(it.Quantity), or(it.Condition, "Good"), or(it.Department, "N/A"),
		})
	}
	return rows
}

// MovementReport counts movements by kind.
type MovementReport struct {
	Total       int              `json:"total"`
	In          int              `json:"in"`
	Out         int              `json:"out"`
	Adjustments int              `json:"adjustments"`
	Movements   []model.Movement `json:"movements"`
}

// Movements reports the movements in r.
func Movements(ctx context.Context, src Source, r Range) (*MovementReport, error) {
	movements, err := src.ListMovements(ctx, model.MovementFilter{Since: r.From, Until: r.To})
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}

	rep := &MovementReport{Total: len(movements), Movements: nonNil(movements)}
	for _, m := range movements {
		switch m.Kind {
		case model.MovementIn:
			rep.In++
		case model.MovementOut:
			rep.Out++
		case model.MovementAdjustment:
			rep.Adjustments++
		}
	}
	return rep, nil
}

// Table renders the movement details.
func (rep *MovementReport) Table() [][]string {
	rows := [][]string{{"Date", "Item", "Type", "Qty", "User", "Reason"}}
	for _, m := range rep.Movements {
		rows = append(rows, []string{
			m.CreatedAt.Format(dateLayout),
			or(m.ItemName, "Unknown"),
			strings.ToUpper(m.Kind),
			fmt.Sprint(m.Quantity),
			or(m.UserName, "System"),
			or(m.Reason, "-"),
		})
	}
	return rows
}

// LowStockReport lists active items at or below their threshold.
type LowStockReport struct {
	Items []model.Item `json:"items"`
}

// LowStock reports the items that need restocking.
func LowStock(ctx context.Context, src Source) (*LowStockReport, error) {
	items, err := src.LowStockItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing low stock items: %w", err)
	}
	return &LowStockReport{Items: nonNil(items)}, nil
}

// Table renders the low-stock items.
func (rep *LowStockReport) Table() [][]string {
	rows := [][]string{{"Item Name", "Category", "Quantity", "Min Stock", "Department"}}
	for _, it := range rep.Items {
		rows = append(rows, []string{
			it.Name, it.Category, fmt.Sprint(it.Quantity), fmt.Sprint(it.Threshold()), or(it.Department, "N/A"),
		})
	}
	return rows
}

// UsageReport ranks the most issued items.
type UsageReport struct {
	Trends []viewmodel.Usage `json:"trends"`
}

// Usage reports the top items by outgoing quantity in r.
func Usage(ctx context.Context, src Source, r Range) (*UsageReport, error) {
	movements, err := src.ListMovements(ctx, model.MovementFilter{
		Kind: model.MovementOut, Since: r.From, Until: r.To,
	})
	if err != nil {
		return nil, fmt.Errorf("listing movements: %w", err)
	}
	return &UsageReport{Trends: viewmodel.UsageTrends(movements, UsageLimit)}, nil
}

// Table renders the ranking.
func (rep *UsageReport) Table() [][]string {
	rows := [][]string{{"Rank", "Item Name", "Quantity Used"}}
	for i, u := range rep.Trends {
		rows = append(rows, []string{fmt.Sprint(i + 1), u.ItemName, fmt.Sprint(u.Quantity)})
	}
	return rows
}

// RequestReport counts requests by status.
type RequestReport struct {
	Total     int             `json:"total"`
	Pending   int             `json:"pending"`
	Approved  int             `json:"approved"`
	Rejected  int             `json:"rejected"`
	Fulfilled int             `json:"fulfilled"`
	Requests  []model.Request `json:"requests"`
}

// Requests reports the requests filed in r.
func Requests(ctx context.Context, src Source, r Range) (*RequestReport, error) {
	requests, err := src.ListRequests(ctx, model.RequestFilter{Since: r.From, Until: r.To})
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}

	rep := &RequestReport{Total: len(requests), Requests: nonNil(requests)}
	for _, req := range requests {
		switch req.Status {
		case model.RequestPending:
			rep.Pending++
		case model.RequestApproved:
			rep.Approved++
		case model.RequestRejected:
			rep.Rejected++
		case model.RequestFulfilled:
			rep.Fulfilled++
		}
	}
	return rep, nil
}

// Table renders the request log.
func (rep *RequestReport) Table() [][]string {
	rows := [][]string{{"Date", "User", "Item", "Qty", "Status"}}
	for _, req := range rep.Requests {
		rows = append(rows, []string{
			req.CreatedAt.Format(dateLayout),
			or(req.UserName, "Unknown"),
			or(req.ItemName, "Unknown"),
			fmt.Sprint(req.Quantity),
			req.Status,
		})
	}
	return rows
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// Report names accepted by Build.
const (
	NameInventory = "inventory"
	NameMovements = "movements"
	NameLowStock  = "low-stock"
	NameUsage     = "usage"
	NameRequests  = "requests"
)

var titles = map[string]string{
	NameInventory: "Inventory Report",
	NameMovements: "Stock Movement Report",
	NameLowStock:  "Low Stock Report",
	NameUsage:     "Usage Trends Report",
	NameRequests:  "Request Report",
}

// Title returns the export title of a named report.
func Title(name string) string {
	return titles[name]
}

// Build runs the named report over r.
func Build(ctx context.Context, src Source, name string, r Range) (Tabular, error) {
	switch name {
	case NameInventory:
		return Inventory(ctx, src, r)
	case NameMovements:
		return Movements(ctx, src, r)
	case NameLowStock:
		return LowStock(ctx, src)
	case NameUsage:
		return Usage(ctx, src, r)
	case NameRequests:
		return Requests(ctx, src, r)
	}
	return nil, model.Invalid("report", fmt.Sprintf("unknown report %q", name))
}
