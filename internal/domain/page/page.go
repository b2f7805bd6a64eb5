// Package page holds pagination arithmetic shared by listings and search.
package page

import "fmt"

// Defaults for page-based listings.
const (
	DefaultPage    = 1
	DefaultPerPage = 25
)

// Meta describes one page of a paginated result.
type Meta struct {
	Page    int `json:"page"`
	Pages   int `json:"pages"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// Request is a validated 1-indexed page request.
type Request struct {
	page    int
	perPage int
}

// NewRequest validates page parameters. Zero values take the defaults.
func NewRequest(page, perPage, maxPerPage int) (Request, error) {
	if page == 0 {
		page = DefaultPage
	}
	if perPage == 0 {
		perPage = DefaultPerPage
	}
	if page < 1 {
		return Request{}, fmt.Errorf("page must be a natural number, got %d", page)
	}
	if perPage < 1 {
		return Request{}, fmt.Errorf("per_page must be a natural number, got %d", perPage)
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		return Request{}, fmt.Errorf("per_page must be at most %d, got %d", maxPerPage, perPage)
	}
	return Request{page: page, perPage: perPage}, nil
}

// Page returns the requested 1-indexed page.
func (r Request) Page() int { return r.page }

// PerPage returns the page length.
func (r Request) PerPage() int { return r.perPage }

// Offset returns the index of the first item on the page.
func (r Request) Offset() int { return (r.page - 1) * r.perPage }

// Count returns ceil(total/perPage), or 0 when total is 0.
func Count(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// Clamp returns page limited to the last page. Result is 0 when pages is 0.
func Clamp(page, pages int) int {
	if pages == 0 {
		return 0
	}
	if page > pages {
		return pages
	}
	return page
}

// NewMeta describes page r of a listing with total items; out-of-range pages are kept as requested.
func NewMeta(r Request, total int) Meta {
	return Meta{Page: r.page, Pages: Count(total, r.perPage), PerPage: r.perPage, Total: total}
}
