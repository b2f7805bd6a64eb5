package document

import (
	"context"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	domtag "github.com/kailas-cloud/searchr/internal/domain/tag"
)

// Repository defines the storage contract for documents.
type Repository interface {
	Create(ctx context.Context, doc *domdoc.Document) error
	Save(ctx context.Context, doc *domdoc.Document) error
	Get(ctx context.Context, id int64) (domdoc.Document, error)
	List(ctx context.Context, offset, limit int) (docs []domdoc.Document, total int, err error)
}

// TagReader resolves tag ids attached to documents.
type TagReader interface {
	Get(ctx context.Context, id int64) (domtag.Tag, error)
	GetMany(ctx context.Context, ids []int64) ([]domtag.Tag, error)
	Missing(ctx context.Context, ids []int64) ([]int64, error)
}

// Notifier tells the sync daemon that a document changed.
type Notifier interface {
	Enqueue(ctx context.Context, ids ...int64) error
}
