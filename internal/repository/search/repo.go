package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	bsearch "github.com/blevesearch/bleve/v2/search"
	"github.com/blevesearch/bleve/v2/search/highlight/highlighter/html"
	bq "github.com/blevesearch/bleve/v2/search/query"

	"github.com/kailas-cloud/searchr/internal/domain"
	"github.com/kailas-cloud/searchr/internal/domain/page"
	"github.com/kailas-cloud/searchr/internal/domain/search/query"
	"github.com/kailas-cloud/searchr/internal/domain/search/request"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	"github.com/kailas-cloud/searchr/internal/index"
)

const fragmentSeparator = "..."

// searcher is the read side of the index this repository needs.
type searcher interface {
	SearchInContext(ctx context.Context, req *bleve.SearchRequest) (*bleve.SearchResult, error)
	Mapping() mapping.IndexMapping
}

// Repo executes parsed queries against the committed index.
type Repo struct {
	idx searcher
	now func() time.Time
}

// New creates a search repository over ix.
func New(ix *index.Index) *Repo {
	return &Repo{idx: ix.Bleve(), now: time.Now}
}

// Search runs q and returns the requested page. A page past the end is
// clamped to the last page; with no hits the page is 0.
func (r *Repo) Search(ctx context.Context, q *query.Query, req request.Request) (result.Page, error) {
	compiled, err := compile(q, r.idx.Mapping(), r.now())
	if err != nil {
		return result.Page{}, fmt.Errorf("compile query: %w: %w", domain.ErrInvalidQuery, err)
	}

	res, err := r.run(ctx, compiled, req)
	if err != nil {
		return result.Page{}, err
	}

	total := int(res.Total)
	pages := page.Count(total, req.PerPage())
	current := page.Clamp(req.Page(), pages)
	if current > 0 && current != req.Page() {
		req = req.WithPage(current)
		if res, err = r.run(ctx, compiled, req); err != nil {
			return result.Page{}, err
		}
	}

	hits := make([]result.Hit, 0, len(res.Hits))
	for i, h := range res.Hits {
		hits = append(hits, toHit(h, req.Offset()+i))
	}

	return result.Page{
		Hits:      hits,
		Page:      current,
		Pages:     pages,
		PerPage:   req.PerPage(),
		Total:     total,
		SortField: req.SortField(),
		Reverse:   req.Reverse(),
	}, nil
}

func (r *Repo) run(ctx context.Context, q bq.Query, req request.Request) (*bleve.SearchResult, error) {
	sr := bleve.NewSearchRequestOptions(q, req.PerPage(), req.Offset(), false)
	sr.Fields = []string{index.FieldID, index.FieldTitle}
	sr.IncludeLocations = true
	sr.Highlight = bleve.NewHighlightWithStyle(html.Name)
	sr.Highlight.AddField(index.FieldText)
	sr.SortBy(sortOrder(req.SortField(), req.Reverse()))

	res, err := r.idx.SearchInContext(ctx, sr)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return res, nil
}

// sortOrder is relevance (best first) by default; reverse flips the
// primary key. The document id breaks ties.
func sortOrder(field string, reverse bool) []string {
	if field == "" {
		if reverse {
			return []string{"_score", "_id"}
		}
		return []string{"-_score", "_id"}
	}
	if reverse {
		return []string{"-" + field, "_id"}
	}
	return []string{field, "_id"}
}

func toHit(h *bsearch.DocumentMatch, rank int) result.Hit {
	hit := result.Hit{Score: h.Score, Rank: rank}
	if v, ok := h.Fields[index.FieldID].(float64); ok {
		hit.ID = int64(v)
	}
	if v, ok := h.Fields[index.FieldTitle].(string); ok {
		hit.Title = v
	}
	hit.Snippet = strings.Join(h.Fragments[index.FieldText], fragmentSeparator)
	hit.Terms = matchedTerms(h)
	return hit
}

// matchedTerms lists "field:term" pairs found in the hit, sorted.
func matchedTerms(h *bsearch.DocumentMatch) []string {
	var terms []string
	for field, locs := range h.Locations {
		for term := range locs {
			terms = append(terms, field+":"+term)
		}
	}
	sort.Strings(terms)
	return terms
}
