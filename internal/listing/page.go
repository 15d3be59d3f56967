package listing

const (
	DefaultPage  = 1
	DefaultLimit = 12
	MaxLimit     = 100
)

// PageRequest selects one page of a result set. Page is 1-based.
type PageRequest struct {
	Page  int
	Limit int
}

func (p PageRequest) Offset() int { return (p.Page - 1) * p.Limit }

// Pagination is the metadata returned alongside a page.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalBooks  int  `json:"totalBooks"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// NewPagination computes page metadata for total items.
func NewPagination(p PageRequest, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  pages,
		TotalBooks:  total,
		HasNext:     p.Page < pages,
		HasPrev:     p.Page > 1,
	}
}

// Paginate returns the requested slice of items. A page past the end is
// empty.
func Paginate[T any](items []T, p PageRequest) ([]T, Pagination) {
	meta := NewPagination(p, len(items))
	start := p.Offset()
	if start >= len(items) || start < 0 {
		return []T{}, meta
	}
	end := start + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}
