package indexing

import (
	"context"

	"github.com/kailas-cloud/searchr/internal/index"
)

// IDLister enumerates every document id in the primary store.
type IDLister interface {
	ListIDs(ctx context.Context) ([]int64, error)
}

// Queue is the index queue as seen by administration.
type Queue interface {
	Enqueue(ctx context.Context, ids ...int64) error
	Len(ctx context.Context) (int64, error)
}

// StatusReader reports on the committed index.
type StatusReader interface {
	Status() (index.Status, error)
}
