package indexsync

import (
	"context"
	"time"

	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/index"
)

// DocumentGetter reads documents from the primary store.
type DocumentGetter interface {
	Get(ctx context.Context, id int64) (domdoc.Document, error)
}

// Consumer delivers queued ids until ctx is cancelled.
type Consumer interface {
	Consume(
		ctx context.Context,
		fn func(ctx context.Context, id int64, err error),
		idle func(ctx context.Context),
	) error
}

// Writer is the buffered index writer.
type Writer interface {
	Upsert(p index.Projection) error
	Delete(id int64) error
	Flush() error
	Due(now time.Time) bool
	Close() error
}

// Observer counts processed messages by outcome.
type Observer interface {
	ObserveMessage(outcome string)
}
