package searchr

import "time"

// Tag is a label documents can carry.
type Tag struct {
	ID          int64
	Title       string
	Description string
}

// TagDetail is a tag with the live documents carrying it.
type TagDetail struct {
	Tag
	Documents []Document
}

// Document is a stored document. Tags are resolved only where noted.
type Document struct {
	ID      int64
	Title   string
	Text    string
	Created time.Time
	Updated time.Time
	Deleted bool
	Tags    []Tag
}

// Page is pagination metadata for listings and searches.
type Page struct {
	Page    int
	Pages   int
	PerPage int
	Total   int
}

// DocumentList is one page of documents.
type DocumentList struct {
	Documents []Document
	Page      Page
}

// TagList is one page of tags.
type TagList struct {
	Tags []Tag
	Page Page
}

// SearchOptions controls paging and ordering. Zero values select the
// first page, the default page size and relevance order.
type SearchOptions struct {
	Page      int
	PerPage   int
	SortField string
	Reverse   bool
}

// Hit is a single search hit.
type Hit struct {
	ID      int64
	Title   string
	Snippet string
	Score   float64
	Rank    int
	Terms   []string
}

// SearchResult is one page of hits. Query is the normalized query, or
// ":(" when it cannot be rendered.
type SearchResult struct {
	Query     string
	Hits      []Hit
	Page      Page
	SortField string
	Reverse   bool
}

// IndexStatus summarizes the committed index. Queued is -1 when the
// broker could not report the backlog.
type IndexStatus struct {
	DocCount     uint64
	LastModified time.Time
	IsEmpty      bool
	Queued       int64
}
