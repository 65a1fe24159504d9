package api

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/kns/internal/model"
	"github.com/erazemk/kns/internal/store"
	"github.com/erazemk/kns/internal/viewmodel"
)

// ViewsHandler renders the inventory and movement pages.
type ViewsHandler struct {
	Store *store.Store
}

type optionsResponse struct {
	Categories  []string `json:"categories"`
	Departments []string `json:"departments"`
	Units       []string `json:"units"`
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

// pageSize reads the size parameter, capped at viewmodel.MaxPageSize.
func pageSize(r *http.Request) int {
	return min(queryInt(r, "size"), viewmodel.MaxPageSize)
}

// inventoryState rebuilds the view state from query parameters.
func inventoryState(r *http.Request) viewmodel.State {
	q := r.URL.Query()
	s := viewmodel.NewState()
	s.SetFilters(viewmodel.Filters{
		Search:     q.Get("search"),
		Department: q.Get("department"),
		Category:   q.Get("category"),
		Status:     q.Get("status"),
	})
	if size := pageSize(r); size > 0 {
		s.SetPageSize(size)
	}
	if group := q.Get("group"); group != "" {
		s.ShowGroup(group)
	}
	if page := queryInt(r, "page"); page > 0 {
		s.Page = page
	}
	return s
}

// Inventory handles GET /api/views/inventory.
func (h *ViewsHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context(), model.ItemFilter{})
	if err != nil {
		writeError(w, r, err, "load inventory")
		return
	}
	jsonResponse(w, http.StatusOK, viewmodel.BuildInventoryView(items, inventoryState(r)))
}

// Movements handles GET /api/views/movements.
func (h *ViewsHandler) Movements(w http.ResponseWriter, r *http.Request) {
	movements, err := h.Store.ListMovements(r.Context(), model.MovementFilter{})
	if err != nil {
		writeError(w, r, err, "load movements")
		return
	}

	q := r.URL.Query()
	f := viewmodel.MovementFilters{
		Search: q.Get("search"),
		Type:   model.DisplayType(q.Get("type")),
	}
	jsonResponse(w, http.StatusOK, viewmodel.BuildMovementView(movements, f, queryInt(r, "page"), pageSize(r)))
}

// Options handles GET /api/options. The lookups are independent and run
// concurrently.
func (h *ViewsHandler) Options(w http.ResponseWriter, r *http.Request) {
	var resp optionsResponse
	g, ctx := errgroup.WithContext(r.Context())

	g.Go(func() error {
		var err error
		resp.Categories, err = h.Store.DistinctValues(ctx, model.EntityItems, "category")
		return err
	})
	g.Go(func() error {
		var err error
		resp.Departments, err = h.Store.Departments(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		resp.Units, err = h.Store.DistinctValues(ctx, model.EntityItems, "unit")
		return err
	})

	if err := g.Wait(); err != nil {
		writeError(w, r, err, "load options")
		return
	}

	resp.Categories = emptyIfNil(resp.Categories)
	resp.Departments = emptyIfNil(resp.Departments)
	resp.Units = emptyIfNil(resp.Units)
	jsonResponse(w, http.StatusOK, resp)
}
