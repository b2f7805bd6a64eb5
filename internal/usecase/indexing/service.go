// Package indexing administers the search index: status reports and full
// reindexing through the index queue.
package indexing

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/index"
	"github.com/kailas-cloud/searchr/internal/logger"
)

// enqueueChunk bounds the size of one broker command.
const enqueueChunk = 1000

// Report is the index status plus the queue backlog.
type Report struct {
	index.Status
	// Queued is -1 when the broker could not be asked.
	Queued int64
}

// Service implements index administration.
type Service struct {
	docs   IDLister
	queue  Queue
	status StatusReader
}

// New creates an indexing service.
func New(docs IDLister, queue Queue, status StatusReader) *Service {
	return &Service{docs: docs, queue: queue, status: status}
}

// Status reports on the committed index. A broker failure only hides the
// backlog; it does not fail the report.
func (s *Service) Status(ctx context.Context) (Report, error) {
	st, err := s.status.Status()
	if err != nil {
		return Report{}, fmt.Errorf("index status: %w", err)
	}
	n, err := s.queue.Len(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("queue_length_failed", zap.Error(err))
		n = -1
	}
	return Report{Status: st, Queued: n}, nil
}

// Reindex enqueues every document id, soft-deleted ones included so their
// records are removed. It returns the ids enqueued.
func (s *Service) Reindex(ctx context.Context) ([]int64, error) {
	ids, err := s.docs.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list document ids: %w", err)
	}
	ids = lo.Uniq(ids)
	for _, chunk := range lo.Chunk(ids, enqueueChunk) {
		if err := s.queue.Enqueue(ctx, chunk...); err != nil {
			return nil, fmt.Errorf("enqueue reindex: %w", err)
		}
	}
	logger.FromContext(ctx).Info("reindex_enqueued", zap.Int("total", len(ids)))
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}
