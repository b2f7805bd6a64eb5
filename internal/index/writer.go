package index

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchr/internal/domain"
)

// LockFile is the writer lock file name inside the index directory.
const LockFile = "WRITELOCK"

// ErrWriterClosed is returned by writes after Close.
var ErrWriterClosed = errors.New("index writer closed")

// Default writer settings.
const (
	DefaultBufferLimit = 10
	DefaultFlushPeriod = 60 * time.Second
)

// Batcher commits batches atomically.
type Batcher interface {
	NewBatch() *bleve.Batch
	Batch(b *bleve.Batch) error
}

// CommitObserver receives writer activity. Implementations must be cheap.
type CommitObserver interface {
	ObserveCommit(ops int, took time.Duration, err error)
	SetPending(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveCommit(int, time.Duration, error) {}
func (nopObserver) SetPending(int)                          {}

// Writer buffers index mutations and commits them in batches.
//
// A commit happens exactly when the number of buffered operations reaches
// the limit, on Flush, and on Close. Buffered operations are invisible to
// searchers until committed. Only one Writer per index directory may be
// open at a time.
type Writer struct {
	mu       sync.Mutex
	target   Batcher
	batch    *bleve.Batch
	pending  int
	since    time.Time // when the oldest buffered op arrived
	limit    int
	period   time.Duration
	commits  int
	lock     *flock.Flock
	closed   bool
	observer CommitObserver
	logger   *zap.Logger
	now      func() time.Time
}

// NewWriter opens a buffered writer on ix. It takes the directory write
// lock and fails with domain.ErrIndexLocked if another writer holds it.
func NewWriter(ix *Index, logger *zap.Logger) (*Writer, error) {
	var lock *flock.Flock
	if ix.Dir() != "" {
		lock = flock.New(filepath.Join(ix.Dir(), LockFile))
		ok, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire index write lock: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", lock.Path(), domain.ErrIndexLocked)
		}
	}
	w := newWriter(ix, logger)
	w.lock = lock
	return w, nil
}

func newWriter(target Batcher, logger *zap.Logger) *Writer {
	return &Writer{
		target:   target,
		batch:    target.NewBatch(),
		limit:    DefaultBufferLimit,
		period:   DefaultFlushPeriod,
		observer: nopObserver{},
		logger:   logger,
		now:      time.Now,
	}
}

// WithLimit sets the auto-flush threshold.
func (w *Writer) WithLimit(n int) *Writer {
	if n > 0 {
		w.limit = n
	}
	return w
}

// WithPeriod sets the maximum age of a non-empty buffer before Due reports true.
// Zero disables time-based flushing.
func (w *Writer) WithPeriod(d time.Duration) *Writer {
	if d >= 0 {
		w.period = d
	}
	return w
}

// WithObserver attaches commit metrics.
func (w *Writer) WithObserver(o CommitObserver) *Writer {
	if o != nil {
		w.observer = o
	}
	return w
}

// Upsert buffers a full replacement of the document record.
func (w *Writer) Upsert(p Projection) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	if err := w.batch.Index(p.DocID(), p.Fields()); err != nil {
		return fmt.Errorf("buffer document %d: %w", p.ID, err)
	}
	return w.buffered()
}

// Delete buffers removal of the record with the given id. Deleting an id
// that is not indexed is a no-op at commit.
func (w *Writer) Delete(id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	w.batch.Delete(DocID(id))
	return w.buffered()
}

func (w *Writer) buffered() error {
	if w.pending == 0 {
		w.since = w.now()
	}
	w.pending++
	w.observer.SetPending(w.pending)
	if w.pending >= w.limit {
		return w.flushLocked()
	}
	return nil
}

// Flush commits all buffered operations. Empty buffers are not committed.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.flushLocked()
}

// flushLocked commits the buffer. On failure the buffered operations are
// dropped so one bad batch cannot wedge the writer.
func (w *Writer) flushLocked() error {
	if w.pending == 0 {
		return nil
	}
	ops := w.pending
	start := w.now()
	err := w.target.Batch(w.batch)
	took := w.now().Sub(start)

	w.batch = w.target.NewBatch()
	w.pending = 0
	w.observer.SetPending(0)
	w.observer.ObserveCommit(ops, took, err)

	if err != nil {
		w.logger.Error("index_commit_failed", zap.Int("ops", ops), zap.Error(err))
		return fmt.Errorf("commit %d buffered operations: %w", ops, err)
	}
	w.commits++
	w.logger.Info("index_committed", zap.Int("ops", ops), zap.Duration("took", took))
	return nil
}

// Due reports whether the buffer is non-empty and older than the flush period.
func (w *Writer) Due(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending > 0 && w.period > 0 && now.Sub(w.since) >= w.period
}

// Pending returns the number of buffered operations.
func (w *Writer) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

// Commits returns the number of successful commits.
func (w *Writer) Commits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commits
}

// Close flushes remaining operations and releases the write lock.
// It is safe to call more than once.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	flushErr := w.flushLocked()
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil && flushErr == nil {
			return fmt.Errorf("release index write lock: %w", err)
		}
	}
	return flushErr
}
