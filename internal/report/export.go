package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/erazemk/kns/internal/model"
)

// Tabular is a report that renders as a header row followed by data rows.
type Tabular interface {
	Table() [][]string
}

// FullExportTitle is the title of the full inventory export.
const FullExportTitle = "Full Inventory Export"

// WriteCSV writes rows preceded by the title block: the system name, the
// upper-cased title, the generation time and a blank row.
func WriteCSV(w io.Writer, title string, rows [][]string, now time.Time) error {
	cw := csv.NewWriter(w)

	header := [][]string{
		{"KNS INVENTORY SYSTEM"},
		{strings.ToUpper(title)},
		{"Generated: " + now.Format("2006-01-02 15:04:05")},
		{""},
	}
	for _, row := range append(header, rows...) {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// InventoryTable renders every item with the export columns.
func InventoryTable(items []model.Item) [][]string {
	rows := [][]string{{"ID", "Item Name", "Category", "Department", "Quantity", "Min Stock",
		"Unit Price", "Condition", "Status", "Created At"}}
	for _, it := range items {
		rows = append(rows, []string{
			it.ID,
			it.Name,
			it.Category,
			it.Department,
			fmt.Sprint(it.Quantity),
			fmt.Sprint(it.MinStockLevel),
			it.UnitPrice.StringFixed(2),
			it.Condition,
			it.Status,
			it.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return rows
}

// ExportInventory writes the full inventory export.
func ExportInventory(w io.Writer, items []model.Item, now time.Time) error {
	return WriteCSV(w, FullExportTitle, InventoryTable(items), now)
}
