package viewmodel

import "fmt"

const (
	// DefaultPageSize is used when no positive page size is given.
	DefaultPageSize = 10
	// MaxPageSize bounds page sizes taken from requests.
	MaxPageSize = 100
)

// Page is one page of a sequence. Start and End are 1-indexed for display;
// Start is 0 when the sequence is empty.
type Page[T any] struct {
	Items        []T  `json:"items"`
	Page         int  `json:"page"`
	Size         int  `json:"size"`
	Start        int  `json:"start"`
	End          int  `json:"end"`
	Total        int  `json:"total"`
	TotalPages   int  `json:"total_pages"`
	PrevDisabled bool `json:"prev_disabled"`
	NextDisabled bool `json:"next_disabled"`
}

// Info renders the range as "start-end of total", or "0 of total" when the
// page holds nothing.
func (p Page[T]) Info() string {
	if p.Start == 0 {
		return fmt.Sprintf("0 of %d", p.Total)
	}
	return fmt.Sprintf("%d-%d of %d", p.Start, p.End, p.Total)
}

// Paginate returns the 1-indexed page of seq. A non-positive page reads as
// 1 and a non-positive size as DefaultPageSize. A page past the end is
// empty with Start and End at 0.
func Paginate[T any](seq []T, page, size int) Page[T] {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(seq)
	p := Page[T]{
		Items:        []T{},
		Page:         page,
		Size:         size,
		Total:        total,
		TotalPages:   TotalPages(total, size),
		PrevDisabled: page <= 1,
		NextDisabled: true,
	}
	// Compared by division so large page or size values cannot overflow.
	if total == 0 || page-1 > (total-1)/size {
		return p
	}

	start := (page - 1) * size
	end := start + min(size, total-start)
	p.Items = append(p.Items, seq[start:end]...)
	p.Start = start + 1
	p.End = end
	p.NextDisabled = end >= total
	return p
}

// TotalPages returns the number of pages needed for total entries.
func TotalPages(total, size int) int {
	if size < 1 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 0
	}
	return (total-1)/size + 1
}

// ChangePage moves from page by delta, clamped to [1, last page].
func ChangePage(page, delta, total, size int) int {
	next := min(page+delta, TotalPages(total, size))
	return max(1, next)
}
