package index

import (
	"errors"
	"testing"
	"time"

	"github.com/blevesearch/bleve/v2"
)

// fakeBatcher commits into a real in-memory index and can be told to fail.
type fakeBatcher struct {
	ix      *Index
	failErr error
	calls   int
}

func (f *fakeBatcher) NewBatch() *bleve.Batch { return f.ix.NewBatch() }

func (f *fakeBatcher) Batch(b *bleve.Batch) error {
	f.calls++
	if f.failErr != nil {
		return f.failErr
	}
	return f.ix.Batch(b)
}

type recordingObserver struct {
	commits []int
	errs    int
	pending int
}

func (r *recordingObserver) ObserveCommit(ops int, _ time.Duration, err error) {
	r.commits = append(r.commits, ops)
	if err != nil {
		r.errs++
	}
}

func (r *recordingObserver) SetPending(n int) { r.pending = n }

var errCommit = errors.New("disk full")

func newMemIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenMem()
	if err != nil {
		t.Fatalf("open mem index: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func docCount(t *testing.T, ix *Index) uint64 {
	t.Helper()
	n, err := ix.Bleve().DocCount()
	if err != nil {
		t.Fatalf("doc count: %v", err)
	}
	return n
}

func proj(id int64, tags ...int64) Projection {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return Projection{
		ID: id, Title: "title", Text: "some searchable text",
		Created: ts, Updated: ts, Tags: tags,
	}
}
