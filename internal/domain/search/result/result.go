package result

// NoRender is echoed in place of a query string that cannot be rendered
// (queries referencing the numeric id field).
const NoRender = ":("

// Hit is a single search hit.
type Hit struct {
	ID      int64
	Title   string
	Snippet string   // highlighted fragment(s) of the text field
	Score   float64
	Rank    int      // 0-based position in the full ordered result set
	Terms   []string // matched terms, "field:term"
}

// Page is one page of search hits plus pagination metadata.
type Page struct {
	Hits      []Hit
	Page      int // 1-indexed, clamped to the last page; 0 when Total is 0
	Pages     int // ceil(Total/PerPage), 0 when Total is 0
	PerPage   int
	Total     int
	SortField string
	Reverse   bool
	Query     string // normalized query echo, or NoRender
}
