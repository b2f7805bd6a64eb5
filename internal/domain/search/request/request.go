package request

import (
	"fmt"
	"unicode/utf8"

	"github.com/kailas-cloud/searchr/internal/domain/page"
)

// Search parameter limits.
const (
	// MinQueryLength is the minimum query length in characters.
	MinQueryLength = 3
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 4096
)

// Sortable index fields. An empty sort field means relevance order.
var sortFields = map[string]bool{
	"id":      true,
	"title":   true,
	"created": true,
	"updated": true,
}

// Request is a validated search query.
type Request struct {
	query     string
	page      page.Request
	sortField string
	reverse   bool
}

// New validates search parameters. page and perPage of 0 take the defaults (1 and 25).
func New(query string, pageNum, perPage, maxPerPage int, sortField string, reverse bool) (Request, error) {
	n := utf8.RuneCountInString(query)
	if n < MinQueryLength {
		return Request{}, fmt.Errorf("query is less than %d characters (%d)", MinQueryLength, n)
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if sortField != "" && !sortFields[sortField] {
		return Request{}, fmt.Errorf("invalid sort_field: %q", sortField)
	}
	pr, err := page.NewRequest(pageNum, perPage, maxPerPage)
	if err != nil {
		return Request{}, err
	}
	return Request{query: query, page: pr, sortField: sortField, reverse: reverse}, nil
}

// Query returns the raw query string.
func (r *Request) Query() string { return r.query }

// Page returns the requested 1-indexed page.
func (r *Request) Page() int { return r.page.Page() }

// PerPage returns the page length.
func (r *Request) PerPage() int { return r.page.PerPage() }

// Offset returns the index of the first hit on the requested page.
func (r *Request) Offset() int { return r.page.Offset() }

// SortField returns the sort field, empty for relevance order.
func (r *Request) SortField() string { return r.sortField }

// Reverse reports whether the order is reversed.
func (r *Request) Reverse() bool { return r.reverse }

// WithPage returns a copy of the request pointing at another page.
func (r Request) WithPage(p int) Request {
	pr, err := page.NewRequest(p, r.page.PerPage(), 0)
	if err != nil {
		return r
	}
	r.page = pr
	return r
}
