package indexsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
	domdoc "github.com/kailas-cloud/searchr/internal/domain/document"
	"github.com/kailas-cloud/searchr/internal/index"
)

var testNow = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

// --- Mocks ---

type mockDocs struct {
	docs map[int64]domdoc.Document
	errs map[int64]error
}

func (m *mockDocs) Get(_ context.Context, id int64) (domdoc.Document, error) {
	if err, ok := m.errs[id]; ok {
		return domdoc.Document{}, err
	}
	d, ok := m.docs[id]
	if !ok {
		return domdoc.Document{}, domain.ErrDocumentNotFound
	}
	return d, nil
}

// delivery is one scripted message: an id or a consumer-side error.
type delivery struct {
	id  int64
	err error
}

// scriptedQueue delivers its script, then reports cancellation.
type scriptedQueue struct {
	script []delivery
	idles  int
}

func (q *scriptedQueue) Consume(
	ctx context.Context,
	fn func(ctx context.Context, id int64, err error),
	idle func(ctx context.Context),
) error {
	for _, d := range q.script {
		fn(ctx, d.id, d.err)
		if idle != nil {
			q.idles++
			idle(ctx)
		}
	}
	return context.Canceled
}

type mockWriter struct {
	upserts   []int64
	deletes   []int64
	flushes   int
	closed    int
	due       bool
	upsertErr error
	closeErr  error
}

func (m *mockWriter) Upsert(p index.Projection) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserts = append(m.upserts, p.ID)
	return nil
}

func (m *mockWriter) Delete(id int64) error {
	m.deletes = append(m.deletes, id)
	return nil
}

func (m *mockWriter) Flush() error {
	m.flushes++
	m.due = false
	return nil
}

func (m *mockWriter) Due(time.Time) bool { return m.due }

func (m *mockWriter) Close() error {
	m.closed++
	return m.closeErr
}

type countingObserver struct {
	counts map[Outcome]int
}

func (c *countingObserver) ObserveMessage(o string) {
	if c.counts == nil {
		c.counts = map[Outcome]int{}
	}
	c.counts[Outcome(o)]++
}

func liveDoc(id int64, title string) domdoc.Document {
	return domdoc.Reconstruct(id, title, "text about "+title, testNow, testNow, false, nil)
}

func deletedDoc(id int64) domdoc.Document {
	return domdoc.Reconstruct(id, "gone", "removed text", testNow, testNow, true, nil)
}

var errLookup = errors.New("database is locked")

func newMemWriter(t *testing.T) (*index.Index, *index.Writer) {
	t.Helper()
	ix, err := index.OpenMem()
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })
	w, err := index.NewWriter(ix, zap.NewNop())
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	return ix, w
}

func mustWriter(t *testing.T, ix *index.Index) *index.Writer {
	t.Helper()
	w, err := index.NewWriter(ix, zap.NewNop())
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	return w
}
