package models

const (
	DefaultPage    = 1
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListOptions selects one page of a listing. Page is 1-based.
type ListOptions struct {
	Page    int
	PerPage int
}

// Offset is the number of rows preceding the page. Callers must check
// PastEnd first: for very large pages the product overflows.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.PerPage
}

// PastEnd reports whether the page starts at or after the last of total rows.
// It compares page numbers rather than offsets so it cannot overflow.
func (o ListOptions) PastEnd(total int64) bool {
	if o.PerPage <= 0 {
		return true
	}
	pages := total / int64(o.PerPage)
	if total%int64(o.PerPage) != 0 {
		pages++
	}
	return int64(o.Page-1) >= pages
}

// Page is one page of a listing plus the totals needed to navigate it.
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
	Pages   int
}

// NewPage builds a Page, deriving the page count as ceil(total / per page).
func NewPage[T any](items []T, total int64, opts ListOptions) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if opts.PerPage > 0 {
		pages = int((total + int64(opts.PerPage) - 1) / int64(opts.PerPage))
	}
	return &Page[T]{
		Items:   items,
		Total:   total,
		Page:    opts.Page,
		PerPage: opts.PerPage,
		Pages:   pages,
	}
}
