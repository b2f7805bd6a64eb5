package search

import (
	"context"

	"github.com/kailas-cloud/searchr/internal/domain/search/query"
	"github.com/kailas-cloud/searchr/internal/domain/search/request"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
)

// Repository executes parsed queries against the index.
type Repository interface {
	Search(ctx context.Context, q *query.Query, req request.Request) (result.Page, error)
}
