package viewmodel

import (
	"regexp"
	"sort"
	"strings"

	"github.com/erazemk/kns/internal/model"
)

// classifyRules are checked in order; the first match wins.
var classifyRules = []struct {
	needles []string
	display model.DisplayType
}{
	{[]string{"lost/stolen", "lost", "stolen"}, model.DisplayLostStolen},
	{[]string{"damaged"}, model.DisplayDamaged},
	{[]string{"transfer"}, model.DisplayTransfer},
	{[]string{"return"}, model.DisplayReturn},
	{[]string{"issue", "assign"}, model.DisplayIssue},
}

// ClassifyMovement derives a display type from free-text reason, falling back
// on the coarse kind: out reads as Issue, in as Return, anything else as Issue.
func ClassifyMovement(reason, kind string) model.DisplayType {
	r := strings.ToLower(reason)
	for _, rule := range classifyRules {
		for _, needle := range rule.needles {
			if strings.Contains(r, needle) {
				return rule.display
			}
		}
	}

	if kind == model.MovementIn {
		return model.DisplayReturn
	}
	return model.DisplayIssue
}

// DisplayTypeOf returns the stored display type of m, classifying legacy
// rows that predate it.
func DisplayTypeOf(m model.Movement) model.DisplayType {
	if m.DisplayType.Valid() {
		return m.DisplayType
	}
	return ClassifyMovement(m.Reason, m.Kind)
}

// FormatRefID returns the short reference shown for a movement, e.g. MOV-1A2B3C4D.
func FormatRefID(id string) string {
	if id == "" {
		return "MOV-00000000"
	}
	r := []rune(id)
	if len(r) > 8 {
		r = r[:8]
	}
	return "MOV-" + strings.ToUpper(string(r))
}

var typeTag = regexp.MustCompile(`(?i)\[(Issue|Return|Transfer|Lost/Stolen|Damaged)\]\s*`)

// CleanRemarks strips type tags from a reason for display.
func CleanRemarks(reason string) string {
	return typeTag.ReplaceAllString(reason, "")
}

// BadgeClass returns the CSS class of a display type badge.
func BadgeClass(d model.DisplayType) string {
	switch d {
	case model.DisplayIssue:
		return "mv-badge issue"
	case model.DisplayReturn:
		return "mv-badge return-badge"
	case model.DisplayTransfer:
		return "mv-badge transfer"
	case model.DisplayLostStolen:
		return "mv-badge lost-stolen"
	case model.DisplayDamaged:
		return "mv-badge damaged"
	}
	return "mv-badge"
}

// MovementRow is a movement prepared for display. The embedded movement's
// DisplayType is always resolved.
type MovementRow struct {
	model.Movement
	RefID      string `json:"ref_id"`
	Remarks    string `json:"remarks"`
	BadgeClass string `json:"badge_class"`
	ItemLabel  string `json:"item_label"`
	UserLabel  string `json:"user_label"`
}

// MovementRows prepares movements for display, keeping their order.
func MovementRows(movements []model.Movement) []MovementRow {
	rows := make([]MovementRow, 0, len(movements))
	for _, m := range movements {
		m.DisplayType = DisplayTypeOf(m)
		rows = append(rows, MovementRow{
			Movement:   m,
			RefID:      FormatRefID(m.ID),
			Remarks:    or(CleanRemarks(m.Reason), "-"),
			BadgeClass: BadgeClass(m.DisplayType),
			ItemLabel:  or(m.ItemName, "Unknown Item"),
			UserLabel:  or(m.UserName, "System"),
		})
	}
	return rows
}

// MovementFilters is the active filter set of the movement log.
type MovementFilters struct {
	Search string            `json:"search,omitempty"`
	Type   model.DisplayType `json:"type,omitempty"`
}

// FilterMovements matches search against item name or reference ID and the
// type against the resolved display type.
func FilterMovements(rows []MovementRow, f MovementFilters) []MovementRow {
	search := strings.ToLower(f.Search)
	out := make([]MovementRow, 0, len(rows))
	for _, r := range rows {
		if search != "" &&
			!strings.Contains(strings.ToLower(r.ItemName), search) &&
			!strings.Contains(strings.ToLower(r.RefID), search) {
			continue
		}
		if f.Type != "" && r.DisplayType != f.Type {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Usage is the issued quantity of one item.
type Usage struct {
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// UsageTrends sums outgoing quantities per item name and returns the top
// limit entries, largest first. Ties keep first-seen order.
func UsageTrends(movements []model.Movement, limit int) []Usage {
	var trends []Usage
	index := make(map[string]int)
	for _, m := range movements {
		if m.Kind != model.MovementOut {
			continue
		}
		name := or(m.ItemName, "Unknown")
		i, ok := index[name]
		if !ok {
			i = len(trends)
			index[name] = i
			trends = append(trends, Usage{ItemName: name})
		}
		trends[i].Quantity += m.Quantity
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].Quantity > trends[j].Quantity
	})
	if limit > 0 && len(trends) > limit {
		trends = trends[:limit]
	}
	if trends == nil {
		trends = []Usage{}
	}
	return trends
}
