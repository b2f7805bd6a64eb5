package tag

import (
	"context"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
)

// Repository defines the storage contract for tags.
type Repository interface {
	Create(ctx context.Context, t *domtag.Tag) error
	Save(ctx context.Context, t *domtag.Tag) error
	Get(ctx context.Context, id int64) (domtag.Tag, error)
	List(ctx context.Context, offset, limit int) (tags []domtag.Tag, total int, err error)
}

// DocumentLister finds documents carrying a tag.
type DocumentLister interface {
	ListByTag(ctx context.Context, tagID int64) ([]domdoc.Document, error)
}
