package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/report"
	"github.com/erazemk/kns/internal/store"
)

// ReportsHandler serves administrative reports as JSON or CSV.
type ReportsHandler struct {
	Store *store.Store
}

func (h *ReportsHandler) build(r *http.Request, name string) (report.Tabular, error) {
	q := r.URL.Query()
	rng, err := report.ParseRange(q.Get("start"), q.Get("end"))
	if err != nil {
		return nil, err
	}
	return report.Build(r.Context(), h.Store, name, rng)
}

func (h *ReportsHandler) serve(w http.ResponseWriter, r *http.Request, name string) {
	rep, err := h.build(r, name)
	if err != nil {
		writeError(w, r, err, "build report")
		return
	}
	jsonResponse(w, http.StatusOK, rep)
}

// Inventory handles GET /api/reports/inventory.
func (h *ReportsHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, report.NameInventory)
}

// Movements handles GET /api/reports/movements.
func (h *ReportsHandler) Movements(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, report.NameMovements)
}

// LowStock handles GET /api/reports/low-stock.
func (h *ReportsHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, report.NameLowStock)
}

// Usage handles GET /api/reports/usage.
func (h *ReportsHandler) Usage(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, report.NameUsage)
}

// Requests handles GET /api/reports/requests.
func (h *ReportsHandler) Requests(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, report.NameRequests)
}

// Export handles GET /api/reports/export?report=name. Without a report name
// the full inventory is exported.
func (h *ReportsHandler) Export(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("report")
	now := time.Now()

	var buf bytes.Buffer
	if name == "" || name == "full" {
		items, err := h.Store.ListItems(r.Context(), model.ItemFilter{})
		if err != nil {
			writeError(w, r, err, "export inventory")
			return
		}
		if err := report.ExportInventory(&buf, items, now); err != nil {
			writeError(w, r, err, "export inventory")
			return
		}
		name = "full"
	} else {
		rep, err := h.build(r, name)
		if err != nil {
			writeError(w, r, err, "export report")
			return
		}
		if err := report.WriteCSV(&buf, report.Title(name), rep.Table(), now); err != nil {
			writeError(w, r, err, "export report")
			return
		}
	}

	filename := fmt.Sprintf("kns-%s-%s.csv", name, now.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
