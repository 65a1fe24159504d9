package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/kns/internal/model"
)

type fakeSource struct {
	items     []model.Item
	movements []model.Movement
	requests  []model.Request

	lastMovementFilter model.MovementFilter
}

func (f *fakeSource) ListItems(context.Context, model.ItemFilter) ([]model.Item, error) {
	return f.items, nil
}

func (f *fakeSource) LowStockItems(context.Context) ([]model.Item, error) {
	var out []model.Item
	for _, it := range f.items {
		if !it.Defective() && it.Quantity <= it.Threshold() {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeSource) ListMovements(_ context.Context, mf model.MovementFilter) ([]model.Movement, error) {
	f.lastMovementFilter = mf
	var out []model.Movement
	for _, m := range f.movements {
		if mf.Kind != "" && m.Kind != mf.Kind {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeSource) ListRequests(context.Context, model.RequestFilter) ([]model.Request, error) {
	return f.requests, nil
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), r.To)

	r, err = ParseRange("", "")
	require.NoError(t, err)
	assert.True(t, r.From.IsZero())
	assert.True(t, r.To.IsZero())

	_, err = ParseRange("01/02/2026", "")
	assert.True(t, model.IsValidation(err))

	_, err = ParseRange("2026-02-01", "2026-01-01")
	assert.True(t, model.IsValidation(err))
}

func TestInventoryReport(t *testing.T) {
	src := &fakeSource{
		items: []model.Item{
			{Name: "A", Quantity: 2, MinStockLevel: 5},
			{Name: "B", Quantity: 20, MinStockLevel: 5},
			{Name: "C", Quantity: 0},
		},
		movements: []model.Movement{{Kind: model.MovementOut, Quantity: 1}},
	}
	r := Range{From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	rep, err := Inventory(context.Background(), src, r)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.TotalItems)
	assert.Equal(t, 22, rep.TotalQuantity)
	assert.Equal(t, 2, rep.LowStockCount)
	assert.Equal(t, 1, rep.Movements)
	assert.Equal(t, r.From, src.lastMovementFilter.Since)

	table := rep.Table()
	require.Len(t, table, 4)
	assert.Equal(t, []string{"C", "", "0", "Good", "N/A"}, table[3])
}

func TestMovementReport(t *testing.T) {
	src := &fakeSource{movements: []model.Movement{
		{Kind: model.MovementIn, Quantity: 1},
		{Kind: model.MovementOut, Quantity: 1, ItemName: "Laptop", UserName: "Ana", Reason: "[Issue] Person: Ana"},
		{Kind: model.MovementOut, Quantity: 1},
		{Kind: model.MovementAdjustment, Quantity: 1},
	}}

	rep, err := Movements(context.Background(), src, Range{})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 1, rep.In)
	assert.Equal(t, 2, rep.Out)
	assert.Equal(t, 1, rep.Adjustments)

	table := rep.Table()
	assert.Equal(t, "OUT", table[2][2])
	assert.Equal(t, "Laptop", table[2][1])
	assert.Equal(t, []string{"Unknown", "OUT", "1", "System", "-"}, table[3][1:])
}

func TestUsageReport(t *testing.T) {
	var movements []model.Movement
	for i := range 12 {
		name := string(rune('A' + i))
		for range i + 1 {
			movements = append(movements, model.Movement{Kind: model.MovementOut, Quantity: 1, ItemName: name})
		}
	}
	movements = append(movements, model.Movement{Kind: model.MovementIn, Quantity: 50, ItemName: "A"})
	src := &fakeSource{movements: movements}

	rep, err := Usage(context.Background(), src, Range{})
	require.NoError(t, err)
	assert.Equal(t, model.MovementOut, src.lastMovementFilter.Kind)
	require.Len(t, rep.Trends, UsageLimit)
	assert.Equal(t, "L", rep.Trends[0].ItemName)
	assert.Equal(t, 12, rep.Trends[0].Quantity)
	assert.Equal(t, []string{"1", "L", "12"}, rep.Table()[1])
}

func TestRequestReport(t *testing.T) {
	src := &fakeSource{requests: []model.Request{
		{Status: model.RequestPending},
		{Status: model.RequestPending},
		{Status: model.RequestFulfilled},
		{Status: model.RequestRejected},
	}}

	rep, err := Requests(context.Background(), src, Range{})
	require.NoError(t, err)
	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 2, rep.Pending)
	assert.Equal(t, 1, rep.Fulfilled)
	assert.Equal(t, 1, rep.Rejected)
	assert.Zero(t, rep.Approved)
}

func TestLowStockReportEmpty(t *testing.T) {
	rep, err := LowStock(context.Background(), &fakeSource{})
	require.NoError(t, err)
	assert.NotNil(t, rep.Items)
	assert.Len(t, rep.Table(), 1)
}

func TestExportInventory(t *testing.T) {
	created := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	items := []model.Item{{
		ID: "LAP-0001", Name: "Dell, XPS", Category: "Laptops", Department: "IT",
		Quantity: 1, MinStockLevel: 5, UnitPrice: decimal.RequireFromString("999.5"),
		Condition: "good", Status: "available", CreatedAt: created,
	}}

	var buf bytes.Buffer
	now := time.Date(2026, 3, 5, 8, 30, 0, 0, time.UTC)
	require.NoError(t, ExportInventory(&buf, items, now))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "KNS INVENTORY SYSTEM", lines[0])
	assert.Equal(t, "FULL INVENTORY EXPORT", lines[1])
	assert.Equal(t, "Generated: 2026-03-05 08:30:00", lines[2])
	assert.Empty(t, lines[3])

	rows, err := csv.NewReader(strings.NewReader(strings.Join(lines[4:], "\n"))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "Created At", rows[0][9])
	assert.Equal(t, []string{"LAP-0001", "Dell, XPS", "Laptops", "IT", "1", "5", "999.50",
		"good", "available", "2026-03-04T10:00:00Z"}, rows[1])
}

func TestBuildByName(t *testing.T) {
	src := &fakeSource{}
	for _, name := range []string{NameInventory, NameMovements, NameLowStock, NameUsage, NameRequests} {
		rep, err := Build(context.Background(), src, name, Range{})
		require.NoError(t, err, name)
		assert.NotEmpty(t, rep.Table(), name)
		assert.NotEmpty(t, Title(name), name)
	}

	_, err := Build(context.Background(), src, "bogus", Range{})
	assert.True(t, model.IsValidation(err))
}
