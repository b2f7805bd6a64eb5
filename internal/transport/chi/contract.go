package chi

import (
	"context"

	"github.com/kailas-cloud/searchr/internal/domain/page"
	"github.com/kailas-cloud/searchr/internal/domain/search/result"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
	documentuc "github.com/kailas-cloud/searchr/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchr/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/searchr/internal/usecase/indexing"
	searchuc "github.com/kailas-cloud/searchr/internal/usecase/search"
	taguc "github.com/kailas-cloud/searchr/internal/usecase/tag"
)

// DocumentService is the document use case surface served over HTTP.
type DocumentService interface {
	Create(ctx context.Context, title, text string, tagIDs []int64) (documentuc.Detail, error)
	Put(ctx context.Context, id int64, title, text string, tagIDs []int64) (documentuc.Detail, bool, error)
	Get(ctx context.Context, id int64) (documentuc.Detail, error)
	List(ctx context.Context, pg, perPage int, withTags bool) ([]documentuc.Detail, page.Meta, error)
	Delete(ctx context.Context, id int64) error
	AddTag(ctx context.Context, docID, tagID int64) (documentuc.Detail, error)
	RemoveTag(ctx context.Context, docID, tagID int64) (documentuc.Detail, error)
}

// TagService is the tag use case surface served over HTTP.
type TagService interface {
	Create(ctx context.Context, title, description string) (taguc.Detail, error)
	Put(ctx context.Context, id int64, title, description string) (taguc.Detail, bool, error)
	Get(ctx context.Context, id int64) (taguc.Detail, error)
	List(ctx context.Context, pg, perPage int) ([]domtag.Tag, page.Meta, error)
	Delete(ctx context.Context, id int64) error
}

// SearchService runs queries.
type SearchService interface {
	Search(ctx context.Context, p searchuc.Params) (result.Page, error)
}

// IndexService reports on and rebuilds the index.
type IndexService interface {
	Status(ctx context.Context) (indexinguc.Report, error)
	Reindex(ctx context.Context) ([]int64, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
