package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
	"github.com/kailas-cloud/searchr/internal/domain/search/query"
	"github.com/kailas-cloud/searchr/internal/domain/search/request"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	"github.com/kailas-cloud/searchr/internal/index"
	"github.com/kailas-cloud/searchr/internal/logger"
	"github.com/kailas-cloud/searchr/internal/metrics"
)

const (
	// DefaultMaxPageSize caps per_page.
	DefaultMaxPageSize = 100
	// DefaultCacheSize is the number of parsed queries kept.
	DefaultCacheSize = 512
)

// Params are the raw search parameters of one request.
type Params struct {
	Query     string
	Page      int
	PerPage   int
	SortField string
	Reverse   bool
}

// Service parses, caches, and executes search queries.
type Service struct {
	repo       Repository
	schema     query.Schema
	cache      *lru.Cache[string, *query.Query]
	maxPerPage int
}

// New creates a search service over the document schema.
func New(repo Repository) *Service {
	s := &Service{
		repo:       repo,
		schema:     index.QuerySchema(),
		maxPerPage: DefaultMaxPageSize,
	}
	return s.WithCacheSize(DefaultCacheSize)
}

// WithCacheSize resizes the parsed query cache. Zero or less disables it.
func (s *Service) WithCacheSize(n int) *Service {
	if n <= 0 {
		s.cache = nil
		return s
	}
	c, err := lru.New[string, *query.Query](n)
	if err == nil {
		s.cache = c
	}
	return s
}

// WithMaxPageSize overrides the per_page cap.
func (s *Service) WithMaxPageSize(n int) *Service {
	if n > 0 {
		s.maxPerPage = n
	}
	return s
}

// Search validates p, runs the query and echoes its normalized form.
// Queries that cannot be rendered echo result.NoRender instead of failing.
func (s *Service) Search(ctx context.Context, p Params) (result.Page, error) {
	start := time.Now()

	req, err := request.New(p.Query, p.Page, p.PerPage, s.maxPerPage, p.SortField, p.Reverse)
	if err != nil {
		observe("invalid", start)
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	q, err := s.parse(p.Query)
	if err != nil {
		observe("invalid", start)
		return result.Page{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}

	page, err := s.repo.Search(ctx, q, req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			observe("invalid", start)
		} else {
			observe("error", start)
		}
		return result.Page{}, fmt.Errorf("search: %w", err)
	}

	rendered, err := q.Render()
	if err != nil {
		logger.FromContext(ctx).Debug("query_not_rendered",
			zap.String("query", p.Query), zap.Error(err))
		rendered = result.NoRender
	}
	page.Query = rendered

	observe("ok", start)
	return page, nil
}

func (s *Service) parse(raw string) (*query.Query, error) {
	if s.cache != nil {
		if q, ok := s.cache.Get(raw); ok {
			metrics.SearchQueryCacheTotal.WithLabelValues("hit").Inc()
			return q, nil
		}
		metrics.SearchQueryCacheTotal.WithLabelValues("miss").Inc()
	}
	q, err := query.Parse(raw, s.schema)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Add(raw, q)
	}
	return q, nil
}

func observe(status string, start time.Time) {
	metrics.SearchRequestsTotal.WithLabelValues(status).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())
}
