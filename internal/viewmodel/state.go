package viewmodel

import (
	"slices"

	"github.com/erazemk/kns/internal/model"
)

// View modes of the inventory page.
const (
	ModeSummary = "summary"
	ModeDetail  = "detail"
)

// State is the serializable view state of the inventory page. It replaces
// page-level globals and is changed only through its methods.
type State struct {
	Filters   Filters  `json:"filters"`
	Page      int      `json:"page"`
	PageSize  int      `json:"page_size"`
	Mode      string   `json:"mode"`
	GroupKey  string   `json:"group_key,omitempty"`
	Selection []string `json:"selection,omitempty"`
}

// NewState returns the initial state: summary mode, first page.
func NewState() State {
	return State{Page: 1, PageSize: DefaultPageSize, Mode: ModeSummary}
}

// Normalize fills defaults into a state decoded from a client.
func (s *State) Normalize() {
	if s.Page < 1 {
		s.Page = 1
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if s.Mode != ModeDetail {
		s.Mode = ModeSummary
		s.GroupKey = ""
	}
}

// SetFilters stores new filters and resets the page, selection and view mode.
func (s *State) SetFilters(f Filters) {
	s.Filters = f
	s.Page = 1
	s.ClearSelection()
	s.Mode = ModeSummary
	s.GroupKey = ""
}

// ShowGroup switches to the detail view of one category group.
func (s *State) ShowGroup(key string) {
	s.Mode = ModeDetail
	s.GroupKey = key
	s.Page = 1
}

// ShowSummary switches back to the summary view.
func (s *State) ShowSummary() {
	s.Mode = ModeSummary
	s.GroupKey = ""
	s.Page = 1
}

// SetPageSize changes the page size and returns to the first page.
func (s *State) SetPageSize(size int) {
	if size < 1 {
		size = DefaultPageSize
	}
	s.PageSize = size
	s.Page = 1
}

// ChangePage moves by delta within total entries.
func (s *State) ChangePage(delta, total int) {
	s.Page = ChangePage(s.Page, delta, total, s.PageSize)
}

// Toggle adds or removes an item from the selection.
func (s *State) Toggle(id string) {
	if i := slices.Index(s.Selection, id); i >= 0 {
		s.Selection = slices.Delete(s.Selection, i, i+1)
		return
	}
	s.Selection = append(s.Selection, id)
}

// ClearSelection empties the selection.
func (s *State) ClearSelection() {
	s.Selection = nil
}

// InventoryView is the rendered inventory page.
type InventoryView struct {
	State   State        `json:"state"`
	Stats   Stats        `json:"stats"`
	Summary *Page[Group] `json:"summary,omitempty"`
	Detail  *Page[Row]   `json:"detail,omitempty"`
	Info    string       `json:"info"`
}

// BuildInventoryView filters items and renders the page selected by s.
func BuildInventoryView(items []model.Item, s State) InventoryView {
	s.Normalize()
	filtered := ApplyFilters(items, s.Filters)
	v := InventoryView{State: s, Stats: SummaryStats(items)}

	if s.Mode == ModeDetail {
		p := Paginate(DetailRows(filtered, s.GroupKey), s.Page, s.PageSize)
		v.Detail = &p
		v.Info = p.Info()
		return v
	}

	p := Paginate(GroupByCategory(filtered), s.Page, s.PageSize)
	v.Summary = &p
	v.Info = p.Info()
	return v
}

// MovementView is the rendered movement log page.
type MovementView struct {
	Filters MovementFilters   `json:"filters"`
	Page    Page[MovementRow] `json:"page"`
	Info    string            `json:"info"`
}

// BuildMovementView filters movements and renders one page.
func BuildMovementView(movements []model.Movement, f MovementFilters, page, size int) MovementView {
	p := Paginate(FilterMovements(MovementRows(movements), f), page, size)
	return MovementView{Filters: f, Page: p, Info: p.Info()}
}
