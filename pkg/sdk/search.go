package searchr

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
)

// defaultSearchPageSize applies when SearchOptions.PerPage is zero.
const defaultSearchPageSize = 25

// Search runs query against the committed index.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (res SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	if opts.Page == 0 {
		opts.Page = 1
	}
	if opts.PerPage == 0 {
		opts.PerPage = defaultSearchPageSize
	}
	p, err := c.searchSvc.Search(ctx, searchuc.Params{
		Query:     query,
		Page:      opts.Page,
		PerPage:   opts.PerPage,
		SortField: opts.SortField,
		Reverse:   opts.Reverse,
	})
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return fromResultPage(p), nil
}

// IndexStatus reports the committed index and the queue backlog.
func (c *Client) IndexStatus(ctx context.Context) (st IndexStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.status", start, err) }()

	r, err := c.indexSvc.Status(ctx)
	if err != nil {
		return IndexStatus{}, fmt.Errorf("index status: %w", err)
	}
	return IndexStatus{
		DocCount:     r.DocCount,
		LastModified: r.LastModified,
		IsEmpty:      r.IsEmpty,
		Queued:       r.Queued,
	}, nil
}

// Reindex queues every document for indexing and returns the ids queued.
func (c *Client) Reindex(ctx context.Context) (ids []int64, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.reindex", start, err) }()

	ids, err = c.indexSvc.Reindex(ctx)
	if err != nil {
		return nil, fmt.Errorf("reindex: %w", err)
	}
	return ids, nil
}

func fromResultPage(p result.Page) SearchResult {
	return SearchResult{
		Query: p.Query,
		Hits: lo.Map(p.Hits, func(h result.Hit, _ int) Hit {
			return Hit{
				ID:      h.ID,
				Title:   h.Title,
				Snippet: h.Snippet,
				Score:   h.Score,
				Rank:    h.Rank,
				Terms:   h.Terms,
			}
		}),
		Page:      Page{Page: p.Page, Pages: p.Pages, PerPage: p.PerPage, Total: p.Total},
		SortField: p.SortField,
		Reverse:   p.Reverse,
	}
}
